package bank

// KnownBanks is the institution allow-list used when parsing filenames.
// Filename tokens must match one of these to be trusted as a bank code.
var KnownBanks = []string{
	"BBVA", "BPN", "CIUDAD", "CREDICOOP", "GALICIA", "HIPOTECARIO", "HSBC",
	"ICBC", "ITAU", "MACRO", "MERCADOPAGO", "NACION", "PATAGONIA",
	"PROVINCIA", "RIOJA", "SANJUAN", "SANTANDER", "SUPERVIELLE", "COMAFI",
}

// bankAlias maps in-document phrases to an institution code. Phrases are
// matched case-insensitively; longer phrases win over shorter ones so
// "BANCO PROVINCIA NEUQUEN" resolves to BPN before "BANCO PROVINCIA" can
// claim it for PROVINCIA.
type bankAlias struct {
	Code    Code
	Phrases []string
}

var bankAliases = []bankAlias{
	{"ITAU", []string{"ITAU", "ITAÚ"}},
	{"RIOJA", []string{"BANCO RIOJA", "LA RIOJA"}},
	{"BPN", []string{"BANCO PROVINCIA NEUQUEN", "BPN"}},
	{"NACION", []string{"BANCO DE LA NACION", "BANCO NACION", "BNA"}},
	{"MACRO", []string{"BANCO MACRO", "MACRO"}},
	{"PATAGONIA", []string{"BANCO PATAGONIA", "PATAGONIA EBANK", "PATAGONIA"}},
	{"SANJUAN", []string{"BANCO SAN JUAN", "SAN JUAN"}},
	{"BBVA", []string{"BBVA", "FRANCES", "BANCO FRANCES"}},
	{"GALICIA", []string{"BANCO GALICIA", "OFFICE BANKING GALICIA"}},
	{"SUPERVIELLE", []string{"SUPERVIELLE", "BANCO SUPERVIELLE"}},
	{"HIPOTECARIO", []string{"BANCO HIPOTECARIO", "HIPOTECARIO"}},
	{"ICBC", []string{"ICBC", "INDUSTRIAL AND COMMERCIAL BANK OF CHINA"}},
	{"HSBC", []string{"HSBC", "HSBC ARGENTINA"}},
	{"COMAFI", []string{"BANCO COMAFI", "COMAFI"}},
	{"CREDICOOP", []string{"BANCO CREDICOOP", "CREDICOOP"}},
	{"PROVINCIA", []string{"BANCO PROVINCIA", "BAPRO", "BANCO DE LA PROVINCIA"}},
	{"MERCADOPAGO", []string{"MERCADO PAGO", "MERCADOPAGO"}},
}

// monthTokens recognizes Spanish month names and abbreviations inside a
// filename period segment.
var monthTokens = []string{
	"ENE", "ENERO", "FEB", "FEBRERO", "MAR", "MARZO", "ABR", "ABRIL",
	"MAY", "MAYO", "JUN", "JUNIO", "JUL", "JULIO", "AGO", "AGOSTO",
	"SEP", "SEPT", "SEPTIEMBRE", "OCT", "OCTUBRE", "NOV", "NOVIEMBRE",
	"DIC", "DICIEMBRE",
}
