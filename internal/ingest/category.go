package ingest

import (
	"path/filepath"
	"strings"

	"github.com/unihelp/sotay/internal/classify"
)

// knownFiles maps exact raw-data filenames to categories. Files dropped into
// the raw directory under these names get the right category without relying
// on the substring heuristics below.
var knownFiles = map[string]classify.Category{
	"thoi_khoa_bieu.xlsx":  classify.CategorySchedule,
	"thoi_khoa_bieu.csv":   classify.CategorySchedule,
	"hoc_phi.xlsx":         classify.CategoryTuition,
	"hoc_phi.pdf":          classify.CategoryTuition,
	"quy_che_dao_tao.pdf":  classify.CategoryRegulation,
	"so_tay_sinh_vien.pdf": classify.CategoryGeneral,
}

// categoryHints maps filename substrings (lower-cased, underscores kept) to
// categories. Checked in order so schedule markers win over the generic ones.
var categoryHints = []struct {
	substr   string
	category classify.Category
}{
	{"thoi_khoa_bieu", classify.CategorySchedule},
	{"tkb", classify.CategorySchedule},
	{"lich_hoc", classify.CategorySchedule},
	{"lich_thi", classify.CategorySchedule},
	{"hoc_phi", classify.CategoryTuition},
	{"hocphi", classify.CategoryTuition},
	{"quy_che", classify.CategoryRegulation},
	{"quy_dinh", classify.CategoryRegulation},
	{"noi_quy", classify.CategoryRegulation},
}

// CategoryForFile derives the document category from the file name. Unknown
// names fall back to GENERAL.
func CategoryForFile(path string) classify.Category {
	name := strings.ToLower(filepath.Base(path))
	if cat, ok := knownFiles[name]; ok {
		return cat
	}
	for _, h := range categoryHints {
		if strings.Contains(name, h.substr) {
			return h.category
		}
	}
	return classify.CategoryGeneral
}
