// Package document builds persisted reimbursement documents from raw
// dataset rows.
package document

import (
	"errors"
	"fmt"

	"github.com/dgallion1/jarbas/internal/dataset"
	"github.com/dgallion1/jarbas/internal/normalize"
)

// Document is one reimbursement record as published in the datasets.
type Document struct {
	DocumentID             int64 `db:"document_id"`
	CongresspersonID       int64 `db:"congressperson_id"`
	CongresspersonDocument int64 `db:"congressperson_document"`
	Term                   int64 `db:"term"`
	TermID                 int64 `db:"term_id"`
	SubquotaNumber         int64 `db:"subquota_number"`
	SubquotaGroupID        int64 `db:"subquota_group_id"`
	DocumentType           int64 `db:"document_type"`
	Month                  int64 `db:"month"`
	Year                   int64 `db:"year"`
	Installment            int64 `db:"installment"`
	BatchNumber            int64 `db:"batch_number"`
	ReimbursementNumber    int64 `db:"reimbursement_number"`
	ApplicantID            int64 `db:"applicant_id"`

	DocumentValue      float64 `db:"document_value"`
	RemarkValue        float64 `db:"remark_value"`
	NetValue           float64 `db:"net_value"`
	ReimbursementValue float64 `db:"reimbursement_value"`

	IssueDate *string `db:"issue_date"`

	CongresspersonName       string `db:"congressperson_name"`
	State                    string `db:"state"`
	Party                    string `db:"party"`
	SubquotaDescription      string `db:"subquota_description"`
	SubquotaGroupDescription string `db:"subquota_group_description"`
	Supplier                 string `db:"supplier"`
	CNPJCPF                  string `db:"cnpj_cpf"`
	DocumentNumber           string `db:"document_number"`
	Passenger                string `db:"passenger"`
	LegOfTheTrip             string `db:"leg_of_the_trip"`

	Source *string `db:"source"`
	Line   int     `db:"line"`
}

// Columns is the persisted column order, matching Values.
var Columns = []string{
	"document_id", "congressperson_id", "congressperson_document", "term", "term_id",
	"subquota_number", "subquota_group_id", "document_type", "month", "year",
	"installment", "batch_number", "reimbursement_number", "applicant_id",
	"document_value", "remark_value", "net_value", "reimbursement_value",
	"issue_date",
	"congressperson_name", "state", "party", "subquota_description",
	"subquota_group_description", "supplier", "cnpj_cpf", "document_number",
	"passenger", "leg_of_the_trip",
	"source", "line",
}

// Values returns the document's fields in Columns order.
func (d *Document) Values() []any {
	return []any{
		d.DocumentID, d.CongresspersonID, d.CongresspersonDocument, d.Term, d.TermID,
		d.SubquotaNumber, d.SubquotaGroupID, d.DocumentType, d.Month, d.Year,
		d.Installment, d.BatchNumber, d.ReimbursementNumber, d.ApplicantID,
		d.DocumentValue, d.RemarkValue, d.NetValue, d.ReimbursementValue,
		d.IssueDate,
		d.CongresspersonName, d.State, d.Party, d.SubquotaDescription,
		d.SubquotaGroupDescription, d.Supplier, d.CNPJCPF, d.DocumentNumber,
		d.Passenger, d.LegOfTheTrip,
		d.Source, d.Line,
	}
}

// ErrMissingColumn is returned when a numeric column is absent from the
// dataset header.
var ErrMissingColumn = errors.New("missing column")

// FieldError reports the column and row that failed to normalize.
type FieldError struct {
	Column string
	Source dataset.Partition
	Line   int
	Err    error
}

func (e *FieldError) Error() string {
	source := string(e.Source)
	if source == "" {
		source = "unknown"
	}
	return fmt.Sprintf("%s line %d: column %s: %v", source, e.Line, e.Column, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// FromRow normalizes a raw row into a Document. Any failing column aborts
// the row.
func FromRow(row dataset.Row) (*Document, error) {
	b := builder{row: row}
	d := &Document{
		DocumentID:             b.intField("document_id"),
		CongresspersonID:       b.intField("congressperson_id"),
		CongresspersonDocument: b.intField("congressperson_document"),
		Term:                   b.intField("term"),
		TermID:                 b.intField("term_id"),
		SubquotaNumber:         b.intField("subquota_number"),
		SubquotaGroupID:        b.intField("subquota_group_id"),
		DocumentType:           b.intField("document_type"),
		Month:                  b.intField("month"),
		Year:                   b.intField("year"),
		Installment:            b.intField("installment"),
		BatchNumber:            b.intField("batch_number"),
		ReimbursementNumber:    b.intField("reimbursement_number"),
		ApplicantID:            b.intField("applicant_id"),

		DocumentValue:      b.floatField("document_value"),
		RemarkValue:        b.floatField("remark_value"),
		NetValue:           b.floatField("net_value"),
		ReimbursementValue: b.floatField("reimbursement_value"),

		IssueDate: normalize.Date(row.Fields["issue_date"]),

		CongresspersonName:       row.Fields["congressperson_name"],
		State:                    row.Fields["state"],
		Party:                    row.Fields["party"],
		SubquotaDescription:      row.Fields["subquota_description"],
		SubquotaGroupDescription: row.Fields["subquota_group_description"],
		Supplier:                 row.Fields["supplier"],
		CNPJCPF:                  row.Fields["cnpj_cpf"],
		DocumentNumber:           row.Fields["document_number"],
		Passenger:                row.Fields["passenger"],
		LegOfTheTrip:             row.Fields["leg_of_the_trip"],

		Line: row.Line,
	}
	if b.err != nil {
		return nil, b.err
	}
	if row.Source != "" {
		s := string(row.Source)
		d.Source = &s
	}
	return d, nil
}

// builder keeps the first normalization failure of a row.
type builder struct {
	row dataset.Row
	err error
}

func (b *builder) raw(column string) (string, bool) {
	if b.err != nil {
		return "", false
	}
	v, ok := b.row.Get(column)
	if !ok {
		b.fail(column, ErrMissingColumn)
	}
	return v, ok
}

func (b *builder) intField(column string) int64 {
	v, ok := b.raw(column)
	if !ok {
		return 0
	}
	n, err := normalize.Int(v)
	if err != nil {
		b.fail(column, err)
	}
	return n
}

func (b *builder) floatField(column string) float64 {
	v, ok := b.raw(column)
	if !ok {
		return 0
	}
	f, err := normalize.Float(v)
	if err != nil {
		b.fail(column, err)
	}
	return f
}

func (b *builder) fail(column string, err error) {
	b.err = &FieldError{Column: column, Source: b.row.Source, Line: b.row.Line, Err: err}
}
