package letter

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/jsonv"
	"github.com/teranos/corrfill/logger"
	"github.com/teranos/corrfill/sym"
)

// Default fragment file names, looked up in the input directory.
const (
	DefaultBaseFile       = "input.json"
	DefaultDocInfoFile    = "docInfo.json"
	DefaultPDFInsertFile  = "pdf_insert.json"
	DefaultUIFile         = "ui.json"
	DefaultOptionListFile = "optionList.json"
	DefaultOutputFile     = "output.json"
)

// Manifest names the files a merge reads and writes.
//
//	input_dir = "input"
//	base = "input.json"
//	doc_info = "docInfo.json"
//	pdf_insert = "pdf_insert.json"
//	ui = "ui.json"
//	option_list = "optionList.json"
//	output = "output/output.json"
//
// Fragment paths are relative to input_dir; input_dir and output are
// relative to the manifest's directory.
type Manifest struct {
	InputDir   string `toml:"input_dir"`
	Base       string `toml:"base"`
	DocInfo    string `toml:"doc_info"`
	PDFInsert  string `toml:"pdf_insert"`
	UI         string `toml:"ui"`
	OptionList string `toml:"option_list"`
	Output     string `toml:"output"`
}

// DefaultManifest returns the layout used when no manifest is given.
func DefaultManifest(inputDir, outputDir string) Manifest {
	return Manifest{
		InputDir:   inputDir,
		Base:       DefaultBaseFile,
		DocInfo:    DefaultDocInfoFile,
		PDFInsert:  DefaultPDFInsertFile,
		UI:         DefaultUIFile,
		OptionList: DefaultOptionListFile,
		Output:     filepath.Join(outputDir, DefaultOutputFile),
	}
}

// LoadManifest reads a TOML manifest. Keys it leaves out fall back to
// DefaultManifest(inputDir, outputDir).
func LoadManifest(path, inputDir, outputDir string) (Manifest, error) {
	m := DefaultManifest(inputDir, outputDir)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m, errors.NewNotFoundError("manifest %s does not exist", path)
	}

	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return m, errors.WrapInvalidRequest(err, "parse manifest "+path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warnw("Ignoring unknown manifest keys",
			logger.FieldFile, path,
			"keys", strings.Join(keys, ", "))
	}

	dir := filepath.Dir(path)
	if meta.IsDefined("input_dir") && !filepath.IsAbs(m.InputDir) {
		m.InputDir = filepath.Join(dir, m.InputDir)
	}
	if meta.IsDefined("output") && !filepath.IsAbs(m.Output) {
		m.Output = filepath.Join(dir, m.Output)
	}
	return m, nil
}

// Path resolves a fragment file name against the input directory.
func (m Manifest) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.InputDir, name)
}

// Load reads the base document and every fragment. All five files are
// required; the first missing one is reported with its path.
func (m Manifest) Load() (jsonv.Value, Fragments, error) {
	var f Fragments

	base, err := jsonv.ReadFile(m.Path(m.Base))
	if err != nil {
		return jsonv.Null(), f, err
	}

	for _, item := range []struct {
		name string
		dst  *jsonv.Value
	}{
		{m.DocInfo, &f.DocInfo},
		{m.PDFInsert, &f.PDFInsert},
		{m.UI, &f.UI},
		{m.OptionList, &f.OptionList},
	} {
		v, err := jsonv.ReadFile(m.Path(item.name))
		if err != nil {
			return jsonv.Null(), f, err
		}
		*item.dst = v
	}
	return base, f, nil
}

// Assemble loads the files named by m, merges them and writes the result
// to m.Output.
func Assemble(m Manifest) (jsonv.Value, error) {
	base, frags, err := m.Load()
	if err != nil {
		return jsonv.Null(), err
	}
	doc, err := Merge(base, frags)
	if err != nil {
		return jsonv.Null(), errors.Wrapf(err, "merge %s", m.Path(m.Base))
	}
	if err := jsonv.WriteFile(m.Output, doc); err != nil {
		return jsonv.Null(), err
	}
	ld, _ := doc.Object().Get(LetterDataKey)
	logger.SymbolInfow(sym.Merge, "LetterData written",
		logger.FieldOutput, m.Output,
		logger.FieldCount, ld.Object().Len())
	return doc, nil
}
