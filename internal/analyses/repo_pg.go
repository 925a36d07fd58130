package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"energydocs-backend/internal/facts"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `
id, original_filename, status, notes,
project_name, project_type, capacity_mw, location_address, project_area_size,
technology_details, number_of_units,
developer_name, developer_external_summary, purchaser_or_offtaker,
offtaker_external_summary, seller_or_provider, key_counterparties,
agreement_type, agreement_effective_date, term_length_years,
contract_price_details, guaranteed_output_or_availability,
liquidated_damages_mention, delivery_point, environmental_attributes_ownership,
lead_regulatory_agency, assessment_type, key_permits_mentioned,
key_environmental_concerns, mitigation_mentioned, key_project_dates,
summary, risk_flags, extracted_text_preview, created_at, updated_at`

// Create inserts a new analysis record.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO document_analyses (` + analysisColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
        $31, $32, $33, $34, $35, $36)`
	args, err := analysisArgs(analysis)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query, args...)
	return err
}

// Update replaces every mutable column of an existing record.
func (r *PGRepo) Update(ctx context.Context, analysis Analysis) error {
	const query = `
UPDATE document_analyses SET
	original_filename = $2, status = $3, notes = $4,
	project_name = $5, project_type = $6, capacity_mw = $7, location_address = $8,
	project_area_size = $9, technology_details = $10, number_of_units = $11,
	developer_name = $12, developer_external_summary = $13,
	purchaser_or_offtaker = $14, offtaker_external_summary = $15,
	seller_or_provider = $16, key_counterparties = $17,
	agreement_type = $18, agreement_effective_date = $19, term_length_years = $20,
	contract_price_details = $21, guaranteed_output_or_availability = $22,
	liquidated_damages_mention = $23, delivery_point = $24,
	environmental_attributes_ownership = $25,
	lead_regulatory_agency = $26, assessment_type = $27, key_permits_mentioned = $28,
	key_environmental_concerns = $29, mitigation_mentioned = $30, key_project_dates = $31,
	summary = $32, risk_flags = $33, extracted_text_preview = $34,
	updated_at = now()
WHERE id = $1`
	args, err := analysisArgs(analysis)
	if err != nil {
		return err
	}
	// Drop the created_at/updated_at positions; Update manages timestamps.
	res, err := r.DB.ExecContext(ctx, query, args[:34]...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = `
SELECT ` + analysisColumns + `
FROM document_analyses
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, analysisID)
	analysis, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return analysis, err
}

// List returns analyses newest-first with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + analysisColumns + `
FROM document_analyses
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func analysisArgs(a Analysis) ([]any, error) {
	f := a.Facts
	if f == nil {
		f = &facts.ProjectFacts{}
	}

	counterparties, err := marshalList(f.KeyCounterparties)
	if err != nil {
		return nil, err
	}
	permits, err := marshalList(f.KeyPermitsMentioned)
	if err != nil {
		return nil, err
	}
	concerns, err := marshalList(f.KeyEnvironmentalConcerns)
	if err != nil {
		return nil, err
	}
	dates, err := marshalList(f.KeyProjectDates)
	if err != nil {
		return nil, err
	}
	riskFlags, err := marshalList(a.RiskFlags)
	if err != nil {
		return nil, err
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return []any{
		a.ID,
		a.OriginalFilename,
		a.Status,
		nullStr(strings.Join(a.Notes, "\n")),
		ptrStr(f.ProjectName),
		ptrStr(f.ProjectType),
		numStr(f.CapacityMW),
		ptrStr(f.LocationAddress),
		ptrStr(f.ProjectAreaSize),
		ptrStr(f.TechnologyDetails),
		numStr(f.NumberOfUnits),
		ptrStr(f.DeveloperName),
		nullStr(a.DeveloperExternalSummary),
		ptrStr(f.PurchaserOrOfftaker),
		nullStr(a.OfftakerExternalSummary),
		ptrStr(f.SellerOrProvider),
		counterparties,
		ptrStr(f.AgreementType),
		ptrStr(f.AgreementEffectiveDate),
		numStr(f.TermLengthYears),
		ptrStr(f.ContractPriceDetails),
		ptrStr(f.GuaranteedOutputOrAvailability),
		ptrBool(f.LiquidatedDamagesMention),
		ptrStr(f.DeliveryPoint),
		ptrStr(f.EnvironmentalAttributesOwnership),
		ptrStr(f.LeadRegulatoryAgency),
		ptrStr(f.AssessmentType),
		permits,
		concerns,
		ptrBool(f.MitigationMentioned),
		dates,
		nullStr(a.Summary),
		riskFlags,
		nullStr(a.ExtractedTextPreview),
		createdAt,
		createdAt,
	}, nil
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a     Analysis
		f     facts.ProjectFacts
		notes sql.NullString

		projectName, projectType, capacityMW           sql.NullString
		locationAddress, projectAreaSize               sql.NullString
		technologyDetails, numberOfUnits               sql.NullString
		developerName, developerSummary                sql.NullString
		offtaker, offtakerSummary, seller              sql.NullString
		counterparties                                 []byte
		agreementType, effectiveDate, termYears        sql.NullString
		priceDetails, guaranteedOutput                 sql.NullString
		liquidatedDamages                              sql.NullBool
		deliveryPoint, attributesOwnership             sql.NullString
		regulatoryAgency, assessmentType               sql.NullString
		permits, concerns                              []byte
		mitigation                                     sql.NullBool
		dates, riskFlags                               []byte
		summary, preview                               sql.NullString
	)

	err := row.Scan(
		&a.ID, &a.OriginalFilename, &a.Status, &notes,
		&projectName, &projectType, &capacityMW, &locationAddress, &projectAreaSize,
		&technologyDetails, &numberOfUnits,
		&developerName, &developerSummary, &offtaker,
		&offtakerSummary, &seller, &counterparties,
		&agreementType, &effectiveDate, &termYears,
		&priceDetails, &guaranteedOutput,
		&liquidatedDamages, &deliveryPoint, &attributesOwnership,
		&regulatoryAgency, &assessmentType, &permits,
		&concerns, &mitigation, &dates,
		&summary, &riskFlags, &preview, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}

	if notes.Valid && notes.String != "" {
		a.Notes = strings.Split(notes.String, "\n")
	}
	a.DeveloperExternalSummary = summary2str(developerSummary)
	a.OfftakerExternalSummary = summary2str(offtakerSummary)
	a.Summary = summary2str(summary)
	a.ExtractedTextPreview = summary2str(preview)
	if a.RiskFlags, err = unmarshalList(riskFlags); err != nil {
		return Analysis{}, err
	}

	f.ProjectName = str2ptr(projectName)
	f.ProjectType = str2ptr(projectType)
	f.CapacityMW = str2num(capacityMW)
	f.LocationAddress = str2ptr(locationAddress)
	f.ProjectAreaSize = str2ptr(projectAreaSize)
	f.TechnologyDetails = str2ptr(technologyDetails)
	f.NumberOfUnits = str2num(numberOfUnits)
	f.DeveloperName = str2ptr(developerName)
	f.PurchaserOrOfftaker = str2ptr(offtaker)
	f.SellerOrProvider = str2ptr(seller)
	f.AgreementType = str2ptr(agreementType)
	f.AgreementEffectiveDate = str2ptr(effectiveDate)
	f.TermLengthYears = str2num(termYears)
	f.ContractPriceDetails = str2ptr(priceDetails)
	f.GuaranteedOutputOrAvailability = str2ptr(guaranteedOutput)
	f.LiquidatedDamagesMention = bool2ptr(liquidatedDamages)
	f.DeliveryPoint = str2ptr(deliveryPoint)
	f.EnvironmentalAttributesOwnership = str2ptr(attributesOwnership)
	f.LeadRegulatoryAgency = str2ptr(regulatoryAgency)
	f.AssessmentType = str2ptr(assessmentType)
	f.MitigationMentioned = bool2ptr(mitigation)
	if f.KeyCounterparties, err = unmarshalList(counterparties); err != nil {
		return Analysis{}, err
	}
	if f.KeyPermitsMentioned, err = unmarshalList(permits); err != nil {
		return Analysis{}, err
	}
	if f.KeyEnvironmentalConcerns, err = unmarshalList(concerns); err != nil {
		return Analysis{}, err
	}
	if f.KeyProjectDates, err = unmarshalList(dates); err != nil {
		return Analysis{}, err
	}

	if !factsEmpty(&f) {
		a.Facts = &f
	}
	return a, nil
}

func marshalList(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

func unmarshalList(data []byte) ([]string, error) {
	if len(data) == 0 {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func ptrStr(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}

func ptrBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

// numStr persists the tolerant numeric as text so unparseable raw values
// round-trip unchanged.
func numStr(n facts.Number) any {
	if !n.Present {
		return nil
	}
	return n.String()
}

func str2ptr(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}

func bool2ptr(nb sql.NullBool) *bool {
	if !nb.Valid {
		return nil
	}
	b := nb.Bool
	return &b
}

func str2num(ns sql.NullString) facts.Number {
	if !ns.Valid || ns.String == "" {
		return facts.Number{}
	}
	return facts.RawNum(ns.String)
}

func summary2str(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

func factsEmpty(f *facts.ProjectFacts) bool {
	for _, name := range []string{
		"project_name", "project_type", "capacity_mw", "location_address",
		"project_area_size", "technology_details", "number_of_units",
		"developer_name", "purchaser_or_offtaker", "seller_or_provider",
		"key_counterparties", "agreement_type", "agreement_effective_date",
		"term_length_years", "contract_price_details",
		"guaranteed_output_or_availability", "liquidated_damages_mention",
		"delivery_point", "environmental_attributes_ownership",
		"lead_regulatory_agency", "assessment_type", "key_permits_mentioned",
		"key_environmental_concerns", "mitigation_mentioned", "key_project_dates",
	} {
		if _, ok := f.Field(name); ok {
			return false
		}
	}
	return true
}
