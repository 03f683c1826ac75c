package businessflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amirphl/morevans-pricing/app/schema"
	"github.com/amirphl/morevans-pricing/models"
	"github.com/xuri/excelize/v2"
)

const (
	ExportFilename          = "pricing_export.xlsx"
	configurationsSheetName = "Configurations"
)

// PricingExportFlow renders the collection as a spreadsheet.
type PricingExportFlow interface {
	Export(snapshot PricingSnapshot) (filename string, data []byte, err error)
}

type PricingExportFlowImpl struct{}

func NewPricingExportFlow() PricingExportFlow {
	return &PricingExportFlowImpl{}
}

// Export writes a Configurations sheet followed by one sheet per category with factors.
func (f *PricingExportFlowImpl) Export(snapshot PricingSnapshot) (string, []byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	// Rename default sheet
	if err := xl.SetSheetName(xl.GetSheetName(0), configurationsSheetName); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", fmt.Errorf("%w: %w", ErrExportFailed, err))
	}

	configFields := schema.ConfigurationFields()
	header := []string{"id", "name", "is_active", "is_default"}
	for _, d := range configFields {
		header = append(header, d.Key)
	}
	header = append(header, "active_factors")
	_ = xl.SetSheetRow(configurationsSheetName, "A1", &header)

	for ri, cfg := range snapshot.Configurations {
		values := cfg.NumericValues()
		record := []string{
			formatID(cfg.ID),
			cfg.Name,
			strconv.FormatBool(cfg.IsActive),
			strconv.FormatBool(cfg.IsDefault),
		}
		for _, d := range configFields {
			record = append(record, models.FormatValue(values[d.Key]))
		}
		record = append(record, formatActiveFactors(cfg.ActiveFactors))
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(configurationsSheetName, cellRef, &record)
	}

	usedNames := map[string]bool{configurationsSheetName: true}
	for _, category := range models.PricingFactorCategories {
		var factors []models.PricingFactor
		for _, factor := range snapshot.Factors {
			if factor.Category == category {
				factors = append(factors, factor)
			}
		}
		if len(factors) == 0 {
			continue
		}

		baseName := sanitizeSheetName(category.Label())
		name := baseName
		idx := 1
		for usedNames[name] {
			idx++
			name = truncateSheetName(fmt.Sprintf("%s_%d", baseName, idx))
		}
		usedNames[name] = true
		if _, err := xl.NewSheet(name); err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", fmt.Errorf("%w: %w", ErrExportFailed, err))
		}

		keys := schema.Keys(category)
		header := append([]string{"id", "name", "description", "is_active"}, keys...)
		_ = xl.SetSheetRow(name, "A1", &header)

		for ri, factor := range factors {
			attrs := factor.AttributeStrings()
			record := []string{
				formatID(factor.ID),
				factor.Name,
				factor.Description,
				strconv.FormatBool(factor.IsActive),
			}
			for _, key := range keys {
				record = append(record, attrs[key])
			}
			cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
			_ = xl.SetSheetRow(name, cellRef, &record)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", fmt.Errorf("%w: %w", ErrExportFailed, err))
	}
	return ExportFilename, buf.Bytes(), nil
}

// formatActiveFactors renders the selection as "distance:1,2; time:3" in registry order.
func formatActiveFactors(active models.ActiveFactors) string {
	var parts []string
	for _, category := range models.PricingFactorCategories {
		ids := active[category]
		if len(ids) == 0 {
			continue
		}
		rendered := make([]string, len(ids))
		for i, id := range ids {
			rendered[i] = formatID(id)
		}
		parts = append(parts, string(category)+":"+strings.Join(rendered, ","))
	}
	return strings.Join(parts, "; ")
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain: : \\ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := replacer.Replace(name)
	return truncateSheetName(strings.TrimSpace(safe))
}

func truncateSheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	if name == "" {
		return "Sheet"
	}
	return name
}
