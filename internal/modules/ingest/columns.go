package ingest

import "strings"

// Field is a logical column of the canonical transaction schema.
type Field string

const (
	FieldDate                 Field = "date"
	FieldType                 Field = "type"
	FieldAmount               Field = "amount"
	FieldCounterparty         Field = "counterparty"
	FieldCounterpartyDocument Field = "counterparty_document"
	FieldHolderDocument       Field = "holder_document"
	FieldDescription          Field = "description"
	FieldMethod               Field = "method"
	FieldBank                 Field = "bank"
	FieldAgency               Field = "agency"
	FieldAccount              Field = "account"
	FieldChannel              Field = "channel"
	FieldCountry              Field = "country"
	FieldCurrency             Field = "currency"
)

// requiredFields must all resolve or the file is rejected outright.
var requiredFields = []Field{FieldDate, FieldType, FieldAmount}

// columnAliases is the enumerable list of recognized header names per logical
// field. Matching is substring-based on the normalized (lowercased,
// deaccented) header, so "Data do Lançamento" resolves to FieldDate.
//
// RIF exports in the wild are inconsistent; this table is the single place
// new spellings get added.
var columnAliases = map[Field][]string{
	FieldDate:                 {"data", "date", "dia", "dt_"},
	FieldType:                 {"tipo", "type", "natureza", "operacao", "d/c", "sinal", "entrada/saida"},
	FieldAmount:               {"valor", "value", "amount", "montante", "quantia", "vlr"},
	FieldCounterparty:         {"contraparte", "counterparty", "favorecido", "remetente", "destinatario", "origem/destino", "envolvido", "nome"},
	FieldCounterpartyDocument: {"cpf/cnpj", "cpf_cnpj", "cpf", "cnpj", "documento", "document", "doc"},
	FieldHolderDocument:       {"cpf titular", "documento titular", "titular", "holder"},
	FieldDescription:          {"descricao", "historico", "description", "observacao", "memo", "complemento"},
	FieldMethod:               {"metodo", "forma", "meio", "method", "modalidade"},
	FieldBank:                 {"banco", "bank", "instituicao"},
	FieldAgency:               {"agencia", "agency"},
	FieldAccount:              {"conta", "account"},
	FieldChannel:              {"canal", "channel"},
	FieldCountry:              {"pais", "country"},
	FieldCurrency:             {"moeda", "currency"},
}

// fieldResolutionOrder controls which field claims a header first when
// aliases overlap (e.g. "documento titular" must resolve to holder document
// before the generic "documento" alias claims it for counterparty document).
var fieldResolutionOrder = []Field{
	FieldDate, FieldType, FieldAmount,
	FieldHolderDocument, FieldCounterpartyDocument,
	FieldCounterparty, FieldDescription, FieldMethod,
	FieldBank, FieldAgency, FieldAccount, FieldChannel,
	FieldCountry, FieldCurrency,
}

// ColumnMap maps logical fields to zero-based column indexes of one file.
// Resolving it up front keeps column detection auditable and testable in
// isolation from row parsing.
type ColumnMap map[Field]int

// Has reports whether the field resolved to a column.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// deaccenter folds the accented characters that appear in Brazilian bank
// export headers. Full Unicode normalization is overkill for this fixed
// vocabulary.
var deaccenter = strings.NewReplacer(
	"á", "a", "à", "a", "ã", "a", "â", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "õ", "o", "ô", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

// normalizeHeader lowercases, deaccents and trims a raw header cell.
func normalizeHeader(h string) string {
	return deaccenter.Replace(strings.ToLower(strings.TrimSpace(h)))
}

// ResolveColumns matches the header row against the alias table and returns
// the column map. A required field with no matching header is fatal for the
// whole file (MissingColumnError); optional fields are simply absent from
// the map.
func ResolveColumns(headers []string) (ColumnMap, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	cm := make(ColumnMap)
	claimed := make(map[int]bool)

	for _, field := range fieldResolutionOrder {
		for idx, header := range normalized {
			if claimed[idx] || header == "" {
				continue
			}
			if matchesField(header, field) {
				cm[field] = idx
				claimed[idx] = true
				break
			}
		}
	}

	for _, field := range requiredFields {
		if !cm.Has(field) {
			return nil, &MissingColumnError{Field: string(field)}
		}
	}

	return cm, nil
}

func matchesField(normalizedHeader string, field Field) bool {
	for _, alias := range columnAliases[field] {
		if strings.Contains(normalizedHeader, alias) {
			return true
		}
	}
	return false
}

// cell returns the trimmed value of a field's column in the row, or "" when
// the field did not resolve or the row is short.
func (m ColumnMap) cell(row []string, f Field) string {
	idx, ok := m[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
