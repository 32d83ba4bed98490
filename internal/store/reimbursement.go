package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const reimbursementsTable = "reimbursements"

// Reimbursement aggregates the documents sharing (year, applicant_id,
// document_id), annotated with the externally computed suspicions.
type Reimbursement struct {
	ApplicantID              int64          `db:"applicant_id" json:"applicant_id"`
	BatchNumber              int64          `db:"batch_number" json:"batch_number"`
	CNPJCPF                  string         `db:"cnpj_cpf" json:"cnpj_cpf"`
	CongresspersonDocument   int64          `db:"congressperson_document" json:"congressperson_document"`
	CongresspersonID         int64          `db:"congressperson_id" json:"congressperson_id"`
	CongresspersonName       string         `db:"congressperson_name" json:"congressperson_name"`
	DocumentID               int64          `db:"document_id" json:"document_id"`
	DocumentNumber           string         `db:"document_number" json:"document_number"`
	DocumentType             int64          `db:"document_type" json:"document_type"`
	DocumentValue            float64        `db:"document_value" json:"document_value"`
	Installment              int64          `db:"installment" json:"installment"`
	IssueDate                *string        `db:"issue_date" json:"issue_date"`
	LegOfTheTrip             string         `db:"leg_of_the_trip" json:"leg_of_the_trip"`
	Month                    int64          `db:"month" json:"month"`
	Party                    string         `db:"party" json:"party"`
	Passenger                string         `db:"passenger" json:"passenger"`
	AllReimbursementNumbers  []int64        `db:"all_reimbursement_numbers" json:"all_reimbursement_numbers"`
	AllReimbursementValues   []float64      `db:"all_reimbursement_values" json:"all_reimbursement_values"`
	AllNetValues             []float64      `db:"all_net_values" json:"all_net_values"`
	RemarkValue              float64        `db:"remark_value" json:"remark_value"`
	State                    string         `db:"state" json:"state"`
	SubquotaDescription      string         `db:"subquota_description" json:"subquota_description"`
	SubquotaGroupDescription string         `db:"subquota_group_description" json:"subquota_group_description"`
	SubquotaGroupID          int64          `db:"subquota_group_id" json:"subquota_group_id"`
	SubquotaID               int64          `db:"subquota_id" json:"subquota_id"`
	Supplier                 string         `db:"supplier" json:"supplier"`
	Term                     int64          `db:"term" json:"term"`
	TermID                   int64          `db:"term_id" json:"term_id"`
	TotalNetValue            float64        `db:"total_net_value" json:"total_net_value"`
	TotalReimbursementValue  *float64       `db:"total_reimbursement_value" json:"total_reimbursement_value"`
	Year                     int64          `db:"year" json:"year"`
	Probability              *float64       `db:"probability" json:"probability"`
	Suspicions               map[string]any `db:"suspicions" json:"suspicions"`
}

var reimbursementColumns = []string{
	"applicant_id", "batch_number", "cnpj_cpf", "congressperson_document",
	"congressperson_id", "congressperson_name", "document_id", "document_number",
	"document_type", "document_value", "installment",
	"to_char(issue_date, 'YYYY-MM-DD') AS issue_date",
	"leg_of_the_trip", "month", "party", "passenger",
	"all_reimbursement_numbers", "all_reimbursement_values", "all_net_values",
	"remark_value", "state", "subquota_description", "subquota_group_description",
	"subquota_group_id", "subquota_id", "supplier", "term", "term_id",
	"total_net_value", "total_reimbursement_value", "year", "probability", "suspicions",
}

// Filter narrows a reimbursement listing. Nil fields match everything.
type Filter struct {
	Year        *int64
	ApplicantID *int64
}

func (f Filter) where() squirrel.Eq {
	eq := squirrel.Eq{}
	if f.Year != nil {
		eq["year"] = *f.Year
	}
	if f.ApplicantID != nil {
		eq["applicant_id"] = *f.ApplicantID
	}
	return eq
}

// Page bounds a listing.
type Page struct {
	Limit  uint64
	Offset uint64
}

// Reimbursements is the read-only reimbursement repository.
type Reimbursements struct {
	db DBInterface
}

func NewReimbursements(db DBInterface) *Reimbursements {
	return &Reimbursements{db: db}
}

// List returns one page of reimbursements matching f and the total number
// of matches.
func (r *Reimbursements) List(ctx context.Context, f Filter, p Page) ([]*Reimbursement, int64, error) {
	countQuery, countArgs, err := squirrel.Select("count(*)").
		From(reimbursementsTable).
		Where(f.where()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting reimbursements: %w", err)
	}

	qb := squirrel.Select(reimbursementColumns...).
		From(reimbursementsTable).
		Where(f.where()).
		OrderBy("year DESC", "applicant_id", "document_id").
		PlaceholderFormat(squirrel.Dollar)
	if p.Limit > 0 {
		qb = qb.Limit(p.Limit)
	}
	if p.Offset > 0 {
		qb = qb.Offset(p.Offset)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building select query: %w", err)
	}
	var out []*Reimbursement
	if err := pgxscan.Select(ctx, r.db, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("scanning reimbursements: %w", err)
	}
	return out, total, nil
}

// Get returns the reimbursement with the given key.
func (r *Reimbursements) Get(ctx context.Context, year, applicantID, documentID int64) (*Reimbursement, error) {
	query, args, err := squirrel.Select(reimbursementColumns...).
		From(reimbursementsTable).
		Where(squirrel.Eq{"year": year, "applicant_id": applicantID, "document_id": documentID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var out Reimbursement
	if err := pgxscan.Get(ctx, r.db, &out, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning reimbursement: %w", err)
	}
	return &out, nil
}
