// Package i18n holds the Italian and English strings of the back-office.
// Italian is the default; lookups fall back to it and then to the code.
package i18n

import (
	"context"
	"strings"
)

const (
	Italian = "it"
	English = "en"

	Default = Italian
)

type ctxKey struct{}

var messages = map[string]map[string]string{
	Italian: {
		// validation
		"required":         "Obbligatorio",
		"too_long":         "Troppo lungo",
		"invalid_choice":   "Scelta non valida",
		"invalid_integer":  "Numero intero non valido",
		"invalid_date":     "Data non valida",
		"not_found":        "Elemento inesistente",
		"out_of_range":     "Fuori intervallo",
		"invalid":          "Non valido",
		"invalid_login":    "Email o password errati",

		// navigation
		"nav.interventions": "Interventi",
		"nav.clients":       "Clienti",
		"nav.operators":     "Operatori",
		"nav.suppliers":     "Fornitori",
		"nav.logout":        "Esci",
		"login.title":       "Accesso",
		"login.submit":      "Entra",
		"action.save":       "Salva",
		"action.delete":     "Elimina",
		"action.search":     "Cerca",
		"action.new":        "Nuovo",
		"action.export":     "Esporta",
		"action.import":     "Importa",
		"list.total":        "Totale",
		"list.empty":        "Nessun risultato",
		"list.page":         "Pagina",
		"forbidden":         "Accesso negato",
		"nav.profiles":      "Profili",
		"nav.users":         "Utenti",
		"action.edit":       "Modifica",
		"action.dry_run":    "Solo verifica",
		"import.created":    "Creati",
		"import.updated":    "Aggiornati",
		"import.skipped":    "Saltati",
		"import.rolled_back": "Nessuna modifica salvata",
		"field.email":       "Email",
		"field.password":    "Password",
		"field.name":        "Nome",
		"field.profile":     "Profilo",
		"field.permissions": "Permessi",
		"field.format":      "Formato",
		"field.file":        "File",

		// fields
		"field.id":                  "ID",
		"field.created_at":          "Creato il",
		"field.updated_at":          "Aggiornato il",
		"field.company_name":        "Ragione sociale",
		"field.supplier":            "Fornitore",
		"field.last_name":           "Cognome",
		"field.first_name":          "Nome",
		"field.client_type":         "Tipo cliente",
		"field.building_code":       "Codice AOO",
		"field.display_name":        "Denominazione",
		"field.date":                "Data",
		"field.operator":            "Operatore",
		"field.client":              "Cliente",
		"field.description":         "Descrizione",
		"field.duration_minutes":    "Durata (minuti)",
		"field.operator_count":      "Numero operatori",
		"field.operator_unit_rate":  "Costo orario operatore",
		"field.operator_vat_rate":   "IVA operatore",
		"field.material_quantity":   "Quantità materiale",
		"field.material_unit_price": "Prezzo unitario materiale",
		"field.material_vat_rate":   "IVA materiale",
		"field.call_out_fee":        "Diritto di chiamata",
		"field.call_out_vat_rate":   "IVA diritto di chiamata",
		"field.invoice_status":      "Fattura",
		"field.material_subtotal":   "Totale materiale",
		"field.material_vat":        "IVA materiale",
		"field.material_total":      "Totale materiale ivato",
		"field.labor_subtotal":      "Totale operatore",
		"field.labor_vat":           "IVA operatore",
		"field.labor_total":         "Totale operatore ivato",
		"field.grand_subtotal":      "Totale intervento",
		"field.grand_vat":           "Totale IVA",
		"field.grand_total":         "Totale intervento ivato",

		// fieldsets
		"fieldset.main":       "Intervento",
		"fieldset.operators":  "Operatore/i",
		"fieldset.material":   "Materiale",
		"fieldset.vat":        "IVA",
		"fieldset.calculated": "Calcolati",
		"fieldset.database":   "Database",

		// choices
		"invoice_status.NF": "Non fatturabile",
		"invoice_status.DF": "Da fatturare",
		"invoice_status.FT": "Fatturato",
		"client_type.ND":    "Non definito",
		"client_type.CD":    "Condominio",
		"client_type.PS":    "Persona",
		"client_type.AZ":    "Azienda",
	},
	English: {
		"required":         "Required",
		"too_long":         "Too long",
		"invalid_choice":   "Invalid choice",
		"invalid_integer":  "Invalid integer",
		"invalid_date":     "Invalid date",
		"not_found":        "Does not exist",
		"out_of_range":     "Out of range",
		"invalid":          "Invalid",
		"invalid_login":    "Wrong email or password",

		"nav.interventions": "Interventions",
		"nav.clients":       "Clients",
		"nav.operators":     "Operators",
		"nav.suppliers":     "Suppliers",
		"nav.logout":        "Log out",
		"login.title":       "Sign in",
		"login.submit":      "Sign in",
		"action.save":       "Save",
		"action.delete":     "Delete",
		"action.search":     "Search",
		"action.new":        "New",
		"action.export":     "Export",
		"action.import":     "Import",
		"list.total":        "Total",
		"list.empty":        "No results",
		"list.page":         "Page",
		"forbidden":         "Access denied",
		"nav.profiles":      "Profiles",
		"nav.users":         "Users",
		"action.edit":       "Edit",
		"action.dry_run":    "Check only",
		"import.created":    "Created",
		"import.updated":    "Updated",
		"import.skipped":    "Skipped",
		"import.rolled_back": "No changes saved",
		"field.email":       "Email",
		"field.password":    "Password",
		"field.name":        "Name",
		"field.profile":     "Profile",
		"field.permissions": "Permissions",
		"field.format":      "Format",
		"field.file":        "File",

		"field.id":                  "ID",
		"field.created_at":          "Created at",
		"field.updated_at":          "Updated at",
		"field.company_name":        "Company name",
		"field.supplier":            "Supplier",
		"field.last_name":           "Last name",
		"field.first_name":          "First name",
		"field.client_type":         "Client type",
		"field.building_code":       "Building code",
		"field.display_name":        "Name",
		"field.date":                "Date",
		"field.operator":            "Operator",
		"field.client":              "Client",
		"field.description":         "Description",
		"field.duration_minutes":    "Duration (minutes)",
		"field.operator_count":      "Operators",
		"field.operator_unit_rate":  "Operator hourly rate",
		"field.operator_vat_rate":   "Operator VAT",
		"field.material_quantity":   "Material quantity",
		"field.material_unit_price": "Material unit price",
		"field.material_vat_rate":   "Material VAT",
		"field.call_out_fee":        "Call-out fee",
		"field.call_out_vat_rate":   "Call-out VAT",
		"field.invoice_status":      "Invoice",
		"field.material_subtotal":   "Material subtotal",
		"field.material_vat":        "Material VAT",
		"field.material_total":      "Material total",
		"field.labor_subtotal":      "Labour subtotal",
		"field.labor_vat":           "Labour VAT",
		"field.labor_total":         "Labour total",
		"field.grand_subtotal":      "Intervention total",
		"field.grand_vat":           "Total VAT",
		"field.grand_total":         "Total with VAT",

		"fieldset.main":       "Intervention",
		"fieldset.operators":  "Operators",
		"fieldset.material":   "Material",
		"fieldset.vat":        "VAT",
		"fieldset.calculated": "Calculated",
		"fieldset.database":   "Database",

		"invoice_status.NF": "Not invoiceable",
		"invoice_status.DF": "To be invoiced",
		"invoice_status.FT": "Invoiced",
		"client_type.ND":    "Undefined",
		"client_type.CD":    "Condominium",
		"client_type.PS":    "Person",
		"client_type.AZ":    "Company",
	},
}

// Supported reports whether lang has a message table.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// T translates code into lang, falling back to Italian, then to code.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks the first supported language of an Accept-Language
// header, or the default.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if Supported(base) {
			return base
		}
	}
	return Default
}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the language stored in ctx, or the default.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return Default
}
