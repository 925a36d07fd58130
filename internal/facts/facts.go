package facts

// ProjectFacts is the structured extraction result for one renewable-energy
// project document. Every field is optional; a nil pointer or empty list means
// the information was not found in the text, never that extraction failed.
// Values are immutable once produced by the extractor.
//
// JSON field names double as the identifiers the risk-rule configuration uses
// to reference fields, so they must stay stable.
type ProjectFacts struct {
	// Core project details
	ProjectName       *string `json:"project_name"`
	ProjectType       *string `json:"project_type"`
	CapacityMW        Number  `json:"capacity_mw"`
	LocationAddress   *string `json:"location_address"`
	ProjectAreaSize   *string `json:"project_area_size"`
	TechnologyDetails *string `json:"technology_details"`
	NumberOfUnits     Number  `json:"number_of_units"`

	// Parties involved
	DeveloperName       *string  `json:"developer_name"`
	PurchaserOrOfftaker *string  `json:"purchaser_or_offtaker"`
	SellerOrProvider    *string  `json:"seller_or_provider"`
	KeyCounterparties   []string `json:"key_counterparties"`

	// PPA specific terms
	AgreementType                    *string `json:"agreement_type"`
	AgreementEffectiveDate           *string `json:"agreement_effective_date"`
	TermLengthYears                  Number  `json:"term_length_years"`
	ContractPriceDetails             *string `json:"contract_price_details"`
	GuaranteedOutputOrAvailability   *string `json:"guaranteed_output_or_availability"`
	LiquidatedDamagesMention         *bool   `json:"liquidated_damages_mention"`
	DeliveryPoint                    *string `json:"delivery_point"`
	EnvironmentalAttributesOwnership *string `json:"environmental_attributes_ownership"`

	// Permitting / environmental assessment terms
	LeadRegulatoryAgency     *string  `json:"lead_regulatory_agency"`
	AssessmentType           *string  `json:"assessment_type"`
	KeyPermitsMentioned      []string `json:"key_permits_mentioned"`
	KeyEnvironmentalConcerns []string `json:"key_environmental_concerns"`
	MitigationMentioned      *bool    `json:"mitigation_mentioned"`

	// Consolidated dates
	KeyProjectDates []string `json:"key_project_dates"`
}

// Field resolves a fact by its configured name. The second return value
// reports presence: nil scalars and empty lists are absent. Number fields are
// returned as-is so callers can distinguish parse failures from clean values.
func (f *ProjectFacts) Field(name string) (any, bool) {
	if f == nil {
		return nil, false
	}
	switch name {
	case "project_name":
		return strField(f.ProjectName)
	case "project_type":
		return strField(f.ProjectType)
	case "capacity_mw":
		return numField(f.CapacityMW)
	case "location_address":
		return strField(f.LocationAddress)
	case "project_area_size":
		return strField(f.ProjectAreaSize)
	case "technology_details":
		return strField(f.TechnologyDetails)
	case "number_of_units":
		return numField(f.NumberOfUnits)
	case "developer_name":
		return strField(f.DeveloperName)
	case "purchaser_or_offtaker":
		return strField(f.PurchaserOrOfftaker)
	case "seller_or_provider":
		return strField(f.SellerOrProvider)
	case "key_counterparties":
		return listField(f.KeyCounterparties)
	case "agreement_type":
		return strField(f.AgreementType)
	case "agreement_effective_date":
		return strField(f.AgreementEffectiveDate)
	case "term_length_years":
		return numField(f.TermLengthYears)
	case "contract_price_details":
		return strField(f.ContractPriceDetails)
	case "guaranteed_output_or_availability":
		return strField(f.GuaranteedOutputOrAvailability)
	case "liquidated_damages_mention":
		return boolField(f.LiquidatedDamagesMention)
	case "delivery_point":
		return strField(f.DeliveryPoint)
	case "environmental_attributes_ownership":
		return strField(f.EnvironmentalAttributesOwnership)
	case "lead_regulatory_agency":
		return strField(f.LeadRegulatoryAgency)
	case "assessment_type":
		return strField(f.AssessmentType)
	case "key_permits_mentioned":
		return listField(f.KeyPermitsMentioned)
	case "key_environmental_concerns":
		return listField(f.KeyEnvironmentalConcerns)
	case "mitigation_mentioned":
		return boolField(f.MitigationMentioned)
	case "key_project_dates":
		return listField(f.KeyProjectDates)
	default:
		return nil, false
	}
}

func strField(p *string) (any, bool) {
	if p == nil || *p == "" {
		return nil, false
	}
	return *p, true
}

func boolField(p *bool) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func numField(n Number) (any, bool) {
	if !n.Present {
		return nil, false
	}
	return n, true
}

func listField(items []string) (any, bool) {
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}
