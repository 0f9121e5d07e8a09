// Package model defines the record types flowing through the normalization pipeline.
package model

import "time"

// UnitType says which physical unit the raw quantity of a record was
// denominated in. LPG products report mass, everything else volume.
type UnitType string

const (
	UnitLiters  UnitType = "LITERS"
	UnitKG      UnitType = "KG"
	UnitUnknown UnitType = "UNKNOWN"
)

// RejectReason classifies why a raw record was excluded from a batch.
type RejectReason string

const (
	ReasonUnmappedProduct   RejectReason = "UNMAPPED_PRODUCT"
	ReasonInvalidEntry      RejectReason = "INVALID_ENTRY"
	ReasonInvalidCompany    RejectReason = "INVALID_COMPANY"
	ReasonNonPositiveVolume RejectReason = "NON_POSITIVE_VOLUME"
)

// RawRecord is a single row from an upstream extract, untouched.
type RawRecord struct {
	SourceFile  string   `json:"source_file"`
	CompanyName string   `json:"company_name"`
	CompanyType string   `json:"company_type,omitempty"` // BDC / OMC when the extract says
	Product     string   `json:"product"`
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	Volume      float64  `json:"volume"`
	UnitHint    UnitType `json:"unit_hint,omitempty"`
}

// NormalizedRecord is the terminal artifact of the pipeline: a RawRecord
// with canonical names, the three volume representations, and quality flags.
// It is produced by a pure transform and never mutated afterwards.
type NormalizedRecord struct {
	SourceFile       string    `json:"source_file" csv:"source_file"`
	CompanyName      string    `json:"company_name" csv:"company_name"`
	CompanyType      string    `json:"company_type" csv:"company_type"`
	Product          string    `json:"product" csv:"product"`
	ProductCode      string    `json:"product_code" csv:"product_code"`
	Year             int       `json:"year" csv:"year"`
	Month            int       `json:"month" csv:"month"`
	VolumeLiters     float64   `json:"volume_liters" csv:"volume_liters"`
	VolumeKG         float64   `json:"volume_kg" csv:"volume_kg"`
	VolumeMT         float64   `json:"volume_mt" csv:"volume_mt"`
	UnitType         UnitType  `json:"unit_type" csv:"-"`
	DataQualityScore float64   `json:"data_quality_score" csv:"data_quality_score"`
	IsOutlier        bool      `json:"is_outlier" csv:"is_outlier"`
	CreatedAt        time.Time `json:"created_at" csv:"created_at"`
}

// Rejection records one excluded input row for the run audit trail.
type Rejection struct {
	SourceFile string       `json:"source_file"`
	RowNumber  int          `json:"row_number"`
	Reason     RejectReason `json:"reason"`
	RawProduct string       `json:"raw_product,omitempty"`
	RawCompany string       `json:"raw_company,omitempty"`
}
