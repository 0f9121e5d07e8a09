package normalize

import (
	"time"

	"go.uber.org/zap"

	"github.com/petroverse/ingest-cli/internal/model"
)

// Normalizer runs the full batch transform: product and company
// standardization, unit conversion, non-positive filtering, and the
// batch-wide quality pass. All per-record steps are pure; only the
// outlier threshold needs the whole batch.
type Normalizer struct {
	tables *Tables
	now    func() time.Time
}

// New creates a Normalizer over the given tables.
func New(tables *Tables) *Normalizer {
	return &Normalizer{tables: tables, now: time.Now}
}

// Record transforms one raw record without quality flags. The returned
// record's IsOutlier and DataQualityScore are unset until the batch pass.
func (n *Normalizer) Record(raw model.RawRecord) (model.NormalizedRecord, *model.Rejection) {
	product, rej := n.tables.MapProduct(raw.Product)
	if rej != nil {
		rej.SourceFile = raw.SourceFile
		return model.NormalizedRecord{}, rej
	}

	company, rej := n.tables.MapCompany(raw.CompanyName)
	if rej != nil {
		rej.SourceFile = raw.SourceFile
		rej.RawProduct = raw.Product
		return model.NormalizedRecord{}, rej
	}

	vol := Convert(product.Name, raw.Volume, n.tables)

	return model.NormalizedRecord{
		SourceFile:   raw.SourceFile,
		CompanyName:  company,
		CompanyType:  raw.CompanyType,
		Product:      product.Name,
		ProductCode:  product.Code,
		Year:         raw.Year,
		Month:        raw.Month,
		VolumeLiters: vol.Liters,
		VolumeKG:     vol.KG,
		VolumeMT:     vol.MT,
		UnitType:     vol.Unit,
		CreatedAt:    n.now().UTC(),
	}, nil
}

// Batch transforms a full batch. Records rejected by the mappers or with
// non-positive liters are excluded and counted; survivors are flagged
// against the batch-wide p99 threshold. No record is finalized before
// every volume in the batch is known.
func (n *Normalizer) Batch(raws []model.RawRecord) ([]model.NormalizedRecord, []model.Rejection, model.RunSummary) {
	summary := model.RunSummary{
		InputRecords: len(raws),
		Rejections:   make(map[model.RejectReason]int),
	}

	var records []model.NormalizedRecord
	var rejections []model.Rejection

	for i, raw := range raws {
		rec, rej := n.Record(raw)
		if rej != nil {
			rej.RowNumber = i
			rejections = append(rejections, *rej)
			summary.Rejections[rej.Reason]++
			continue
		}

		// Non-positive volumes are dropped before the percentile is
		// computed so they cannot drag the threshold down.
		if rec.VolumeLiters <= 0 {
			rejection := model.Rejection{
				SourceFile: raw.SourceFile,
				RowNumber:  i,
				Reason:     model.ReasonNonPositiveVolume,
				RawProduct: raw.Product,
				RawCompany: raw.CompanyName,
			}
			rejections = append(rejections, rejection)
			summary.Rejections[model.ReasonNonPositiveVolume]++
			continue
		}

		records = append(records, rec)
	}

	if len(records) > 0 {
		volumes := make([]float64, len(records))
		for i, rec := range records {
			volumes[i] = rec.VolumeLiters
		}
		p99 := Percentile(volumes, outlierPercentile)

		for i := range records {
			f := flagVolume(records[i].VolumeLiters, p99)
			records[i].IsOutlier = f.isOutlier
			records[i].DataQualityScore = f.score
			if f.isOutlier {
				summary.Outliers++
			}
		}
	}

	summary.OutputRecords = len(records)

	zap.L().Info("batch normalized",
		zap.Int("input", summary.InputRecords),
		zap.Int("output", summary.OutputRecords),
		zap.Int("rejected", summary.Rejected()),
		zap.Int("outliers", summary.Outliers),
	)

	return records, rejections, summary
}
