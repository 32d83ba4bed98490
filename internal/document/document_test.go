package document

import (
	"testing"

	"github.com/dgallion1/jarbas/internal/dataset"
	"github.com/dgallion1/jarbas/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow() dataset.Row {
	return dataset.Row{
		Fields: map[string]string{
			"document_id":                "42",
			"congressperson_name":        "Roger That",
			"congressperson_id":          "1",
			"congressperson_document":    "2",
			"term":                       "1970.0",
			"state":                      "UF",
			"party":                      "Partido",
			"term_id":                    "3",
			"subquota_number":            "4",
			"subquota_description":       "Subquota description",
			"subquota_group_id":          "5",
			"subquota_group_description": "Subquota group desc",
			"supplier":                   "Acme",
			"cnpj_cpf":                   "11111111111111",
			"document_number":            "6",
			"document_type":              "7",
			"issue_date":                 "1970-01-01 00:00:00",
			"document_value":             "8.90",
			"remark_value":               "1.23",
			"net_value":                  "4.56",
			"month":                      "1",
			"year":                       "1970",
			"installment":                "7",
			"passenger":                  "John Doe",
			"leg_of_the_trip":            "8",
			"batch_number":               "9",
			"reimbursement_number":       "10",
			"reimbursement_value":        "NaN",
			"applicant_id":               "13",
		},
		Source: dataset.CurrentYear,
		Line:   7,
	}
}

func TestFromRow(t *testing.T) {
	d, err := FromRow(sampleRow())
	require.NoError(t, err)

	assert.Equal(t, int64(42), d.DocumentID)
	assert.Equal(t, int64(1970), d.Term)
	assert.Equal(t, int64(13), d.ApplicantID)
	assert.Equal(t, int64(10), d.ReimbursementNumber)
	assert.InDelta(t, 8.90, d.DocumentValue, 1e-9)
	assert.Equal(t, 0.0, d.ReimbursementValue)
	require.NotNil(t, d.IssueDate)
	assert.Equal(t, "1970-01-01 00:00:00", *d.IssueDate)
	assert.Equal(t, "Roger That", d.CongresspersonName)
	assert.Equal(t, "11111111111111", d.CNPJCPF)
	require.NotNil(t, d.Source)
	assert.Equal(t, "current-year", *d.Source)
	assert.Equal(t, 7, d.Line)
}

func TestFromRow_EmptyValues(t *testing.T) {
	row := sampleRow()
	row.Fields["issue_date"] = ""
	row.Fields["year"] = ""
	row.Fields["net_value"] = "NaN"
	row.Source = ""

	d, err := FromRow(row)
	require.NoError(t, err)
	assert.Nil(t, d.IssueDate)
	assert.Zero(t, d.Year)
	assert.Zero(t, d.NetValue)
	assert.Nil(t, d.Source)
}

func TestFromRow_MalformedNumber(t *testing.T) {
	row := sampleRow()
	row.Fields["month"] = "abc"

	d, err := FromRow(row)
	assert.Nil(t, d)
	require.ErrorIs(t, err, normalize.ErrMalformedNumber)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "month", fe.Column)
	assert.Equal(t, 7, fe.Line)
	assert.Equal(t, `current-year line 7: column month: malformed number: "abc"`, err.Error())
}

func TestFromRow_FirstFailureWins(t *testing.T) {
	row := sampleRow()
	row.Fields["document_id"] = "x"
	row.Fields["document_value"] = "y"

	_, err := FromRow(row)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "document_id", fe.Column)
}

func TestFromRow_MissingNumericColumn(t *testing.T) {
	row := sampleRow()
	delete(row.Fields, "applicant_id")

	_, err := FromRow(row)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestValuesMatchColumns(t *testing.T) {
	d, err := FromRow(sampleRow())
	require.NoError(t, err)

	values := d.Values()
	require.Len(t, values, len(Columns))
	idx := map[string]int{}
	for i, c := range Columns {
		idx[c] = i
	}
	assert.Equal(t, int64(42), values[idx["document_id"]])
	assert.Equal(t, int64(13), values[idx["applicant_id"]])
	assert.Equal(t, "Acme", values[idx["supplier"]])
	assert.Equal(t, 7, values[idx["line"]])
}
