package parsers

import "strings"

// ColumnMap maps semantic roles to column indices in the detected header
// row. Absent roles hold -1. It is built once per file and lives only for
// the duration of one parse call.
type ColumnMap struct {
	Date        int
	Description int
	Branch      int
	Amount      int // single combined-amount column (CR/DB indicator follows)
	Debit       int
	Credit      int
	Balance     int
}

// NewColumnMap returns a ColumnMap with every role marked absent
func NewColumnMap() *ColumnMap {
	return &ColumnMap{
		Date:        -1,
		Description: -1,
		Branch:      -1,
		Amount:      -1,
		Debit:       -1,
		Credit:      -1,
		Balance:     -1,
	}
}

// HasSplitAmounts reports whether the layout uses separate debit/credit
// columns rather than a combined amount column.
func (cm *ColumnMap) HasSplitAmounts() bool {
	return cm.Debit >= 0 || cm.Credit >= 0
}

// isMapped reports whether the given column index is assigned to any role
// other than description.
func (cm *ColumnMap) isMapped(index int) bool {
	return index == cm.Date || index == cm.Branch || index == cm.Amount ||
		index == cm.Debit || index == cm.Credit || index == cm.Balance
}

// columnRule assigns a header cell to a semantic role. Rules are evaluated
// per cell in order and the first match wins for that cell; across cells the
// last matching cell wins for a role, since all cells are visited without
// early exit.
type columnRule struct {
	keywords []string
	// excluded keywords veto the match; used to keep "mutasi debet" and
	// "mutasi kredit" out of the combined-amount role
	excluded []string
	assign   func(cm *ColumnMap, index int)
}

var columnRules = []columnRule{
	{
		keywords: []string{"tanggal", "tgl", "date"},
		assign:   func(cm *ColumnMap, i int) { cm.Date = i },
	},
	{
		keywords: []string{"keterangan", "description", "desc"},
		assign:   func(cm *ColumnMap, i int) { cm.Description = i },
	},
	{
		keywords: []string{"cbg", "cabang", "branch"},
		assign:   func(cm *ColumnMap, i int) { cm.Branch = i },
	},
	{
		keywords: []string{"mutasi", "amount"},
		excluded: []string{"debet", "debit", "kredit", "credit"},
		assign:   func(cm *ColumnMap, i int) { cm.Amount = i },
	},
	{
		keywords: []string{"debet", "debit"},
		assign:   func(cm *ColumnMap, i int) { cm.Debit = i },
	},
	{
		keywords: []string{"kredit", "credit"},
		assign:   func(cm *ColumnMap, i int) { cm.Credit = i },
	},
	{
		keywords: []string{"saldo", "balance"},
		assign:   func(cm *ColumnMap, i int) { cm.Balance = i },
	},
}

// MapColumns assigns each header cell to the first semantic role whose
// keyword set matches the lower-cased cell text by substring. The returned
// map may lack any role except date, which the caller must verify.
func MapColumns(header []string) *ColumnMap {
	cm := NewColumnMap()

	for i, cell := range header {
		text := strings.ToLower(strings.TrimSpace(cell))
		if text == "" {
			continue
		}

		for _, rule := range columnRules {
			if !containsAny(text, rule.keywords) {
				continue
			}
			if len(rule.excluded) > 0 && containsAny(text, rule.excluded) {
				continue
			}
			rule.assign(cm, i)
			break
		}
	}

	return cm
}
