package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lshan99q/epub-converter/pkg/config"
	"github.com/lshan99q/epub-converter/pkg/epub"
	"github.com/lshan99q/epub-converter/pkg/epub/epubtest"
	"github.com/lshan99q/epub-converter/pkg/interfaces"
	"github.com/lshan99q/epub-converter/pkg/logger"
	"github.com/lshan99q/epub-converter/pkg/types"
	"github.com/lshan99q/epub-converter/pkg/utils"
)

type progressEvent struct {
	file, batch int
}

// recorder collects every callback invocation in order
type recorder struct {
	progress []progressEvent
	status   []string
}

func (r *recorder) onProgress(file, batch int) {
	r.progress = append(r.progress, progressEvent{file, batch})
}

func (r *recorder) onStatus(text string) {
	r.status = append(r.status, text)
}

func (r *recorder) lastStatus() string {
	if len(r.status) == 0 {
		return ""
	}
	return r.status[len(r.status)-1]
}

func newTestProcessor(t *testing.T, fs afero.Fs) *DefaultBatchProcessor {
	t.Helper()
	cfg := config.NewConfig()
	converter, err := NewConverterFactory(cfg, logger.Nop()).CreateConverter()
	require.NoError(t, err)
	return NewBatchProcessor(cfg, logger.Nop(), fs, epub.NewStore(fs), converter)
}

func TestFileProgress(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{0, 3, 0},
		{1, 3, 30},
		{2, 3, 60},
		{3, 3, 90},
		{1, 1, 90},
		{0, 0, 90},
		{1, 7, 13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileProgress(tt.done, tt.total), "FileProgress(%d, %d)", tt.done, tt.total)
	}
}

func TestBatchProgress(t *testing.T) {
	tests := []struct {
		index, done, total, files, want int
	}{
		{0, 1, 3, 2, 17},
		{0, 2, 3, 2, 33},
		{0, 3, 3, 2, 50},
		{1, 1, 1, 2, 100},
		{1, 0, 0, 3, 67},
		{0, 0, 4, 1, 0},
		{0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BatchProgress(tt.index, tt.done, tt.total, tt.files),
			"BatchProgress(%d, %d, %d, %d)", tt.index, tt.done, tt.total, tt.files)
	}
}

func TestConvertBatch_ConvertsDocuments(t *testing.T) {
	fs := afero.NewMemMapFs()
	image := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}
	epubtest.Build(t, fs, "/books/book.epub", "漢字書",
		epubtest.XHTML("ch1.xhtml", "漢字與繁體中文"),
		epubtest.Resource("style.css", "text/css", []byte(`p { font-family: "標楷體"; }`)),
		epubtest.Resource("cover.png", "image/png", image),
	)

	rec := &recorder{}
	result, err := newTestProcessor(t, fs).ConvertBatch([]string{"/books/book.epub"}, rec.onProgress, rec.onStatus)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesConverted)
	assert.Equal(t, 1, result.ItemsConverted)
	assert.Equal(t, []string{"/books/简体化_book.epub"}, result.Outputs)

	_, out := epubtest.ReadEntries(t, fs, "/books/简体化_book.epub")
	assert.Contains(t, string(out["OEBPS/ch1.xhtml"]), "<p>汉字与繁体中文</p>")
	assert.Equal(t, `p { font-family: "標楷體"; }`, string(out["OEBPS/style.css"]), "non-document parts are untouched")
	assert.Equal(t, image, out["OEBPS/cover.png"])
	assert.Contains(t, string(out["OEBPS/content.opf"]), "漢字書", "metadata is untouched")

	_, in := epubtest.ReadEntries(t, fs, "/books/book.epub")
	assert.Contains(t, string(in["OEBPS/ch1.xhtml"]), "漢字與繁體中文", "input is never modified")

	assert.Equal(t, []string{"Processing 1/1: book.epub", "Conversion complete: 1 file(s) converted"}, rec.status)
	assert.Equal(t, []progressEvent{{90, 100}, {100, 100}}, rec.progress)
}

func TestConvertBatch_ProgressMonotonic(t *testing.T) {
	fs := afero.NewMemMapFs()
	epubtest.Build(t, fs, "/books/one.epub", "one",
		epubtest.XHTML("a.xhtml", "一"),
		epubtest.XHTML("b.xhtml", "二"),
		epubtest.XHTML("c.xhtml", "三"),
	)
	epubtest.Build(t, fs, "/books/two.epub", "two", epubtest.XHTML("a.xhtml", "四"))

	rec := &recorder{}
	_, err := newTestProcessor(t, fs).ConvertBatch([]string{"/books/one.epub", "/books/two.epub"}, rec.onProgress, rec.onStatus)
	require.NoError(t, err)

	want := []progressEvent{
		{30, 17}, {60, 33}, {90, 50}, {100, 50},
		{90, 100}, {100, 100},
	}
	assert.Equal(t, want, rec.progress)

	for i := 1; i < len(rec.progress); i++ {
		assert.GreaterOrEqual(t, rec.progress[i].batch, rec.progress[i-1].batch, "batch progress must not decrease")
		if rec.progress[i].file == 100 {
			assert.Equal(t, 90, rec.progress[i-1].file, "file progress reaches 90 before the archive is written")
		}
	}
}

func TestConvertBatch_StopsAtCorruptFile(t *testing.T) {
	corruptions := map[string][]byte{
		"not a zip":             []byte("this is plainly not an archive"),
		"truncated zip":         append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 64)...),
		"zip without container": zipWithoutContainer(t),
	}

	for name, corrupt := range corruptions {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			epubtest.Build(t, fs, "/books/a.epub", "a", epubtest.XHTML("a.xhtml", "漢"))
			require.NoError(t, afero.WriteFile(fs, "/books/b.epub", corrupt, 0644))
			epubtest.Build(t, fs, "/books/c.epub", "c", epubtest.XHTML("c.xhtml", "漢"))

			rec := &recorder{}
			paths := []string{"/books/a.epub", "/books/b.epub", "/books/c.epub"}
			result, err := newTestProcessor(t, fs).ConvertBatch(paths, rec.onProgress, rec.onStatus)

			require.Error(t, err)
			assert.True(t, utils.IsErrorType(err, utils.ErrorTypeFormat), "got %v", err)
			assert.Equal(t, 1, result.FilesConverted)

			_, out := epubtest.ReadEntries(t, fs, "/books/简体化_a.epub")
			assert.Contains(t, string(out["OEBPS/a.xhtml"]), "<p>汉</p>")

			for _, missing := range []string{"/books/简体化_b.epub", "/books/简体化_c.epub"} {
				exists, err := afero.Exists(fs, missing)
				require.NoError(t, err)
				assert.False(t, exists, missing)
			}

			assert.Equal(t, progressEvent{0, 0}, rec.progress[len(rec.progress)-1])
			assert.True(t, strings.HasPrefix(rec.lastStatus(), "Error: "))
			assert.Contains(t, rec.lastStatus(), "/books/b.epub")
			assert.NotContains(t, rec.status, "Processing 3/3: c.epub")
		})
	}
}

func zipWithoutContainer(t *testing.T) []byte {
	t.Helper()
	data := epubtest.Bytes(t, "x")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/x.epub", data, 0644))

	book, err := epub.NewStore(fs).Read("/x.epub")
	require.NoError(t, err)

	entry, ok := book.Entry("META-INF/container.xml")
	require.True(t, ok)
	entry.Name = "META-INF/other.xml"

	var buf bytes.Buffer
	require.NoError(t, book.Serialize(&buf))
	return buf.Bytes()
}

func TestConvertBatch_DecodingError(t *testing.T) {
	fs := afero.NewMemMapFs()
	epubtest.Build(t, fs, "/books/bad.epub", "bad", epubtest.Doc{
		Href:      "ch1.xhtml",
		MediaType: "application/xhtml+xml",
		Content:   []byte{'<', 'p', '>', 0xff, 0xfe, '<', '/', 'p', '>'},
	})

	rec := &recorder{}
	_, err := newTestProcessor(t, fs).ConvertBatch([]string{"/books/bad.epub"}, rec.onProgress, rec.onStatus)

	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeDecoding), "got %v", err)
	assert.Contains(t, err.Error(), "OEBPS/ch1.xhtml")

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "/books/bad.epub", appErr.Context["input"])
	assert.Equal(t, "OEBPS/ch1.xhtml", appErr.Context["document"])

	exists, err := afero.Exists(fs, "/books/简体化_bad.epub")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, []progressEvent{{0, 0}}, rec.progress)
}

func TestConvertBatch_MissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := newTestProcessor(t, fs).ConvertBatch([]string{"/books/missing.epub"}, nil, nil)
	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeIO), "got %v", err)
}

func TestConvertBatch_ReadOnlyOutput(t *testing.T) {
	base := afero.NewMemMapFs()
	epubtest.Build(t, base, "/books/book.epub", "book", epubtest.XHTML("a.xhtml", "漢"))
	fs := afero.NewReadOnlyFs(base)

	rec := &recorder{}
	_, err := newTestProcessor(t, fs).ConvertBatch([]string{"/books/book.epub"}, rec.onProgress, rec.onStatus)

	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeIO), "got %v", err)
	assert.Contains(t, rec.lastStatus(), "/books/简体化_book.epub")

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "/books/简体化_book.epub", appErr.Context["output"])
}

func TestNewBatchProcessor_KeepsOwnConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	epubtest.Build(t, fs, "/books/book.epub", "book", epubtest.XHTML("a.xhtml", "漢"))

	cfg := config.NewConfig()
	converter, err := NewConverterFactory(cfg, logger.Nop()).CreateConverter()
	require.NoError(t, err)
	p := NewBatchProcessor(cfg, logger.Nop(), fs, epub.NewStore(fs), converter)

	cfg.OutputPrefix = "changed_"

	result, err := p.ConvertBatch([]string{"/books/book.epub"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/books/简体化_book.epub"}, result.Outputs)
}

func TestConvertBatch_WarnsWithoutMimetype(t *testing.T) {
	fs := afero.NewMemMapFs()
	book := epubtest.Bytes(t, "bare", epubtest.XHTML("a.xhtml", "漢"))
	require.NoError(t, afero.WriteFile(fs, "/books/src.epub", book, 0644))

	parsed, err := epub.NewStore(fs).Read("/books/src.epub")
	require.NoError(t, err)
	mt, ok := parsed.Entry("mimetype")
	require.True(t, ok)
	mt.Data = []byte("application/zip")
	require.NoError(t, epub.NewStore(fs).Write("/books/bare.epub", parsed))

	var logs bytes.Buffer
	cfg := config.NewConfig()
	converter, err := NewConverterFactory(cfg, logger.Nop()).CreateConverter()
	require.NoError(t, err)
	p := NewBatchProcessor(cfg, logger.NewLoggerWithWriter(&logs, "warn", false), fs, epub.NewStore(fs), converter)

	_, err = p.ConvertBatch([]string{"/books/bare.epub"}, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "does not declare application/epub+zip")

	_, out := epubtest.ReadEntries(t, fs, "/books/简体化_bare.epub")
	assert.Contains(t, string(out["OEBPS/a.xhtml"]), "<p>汉</p>")
}

func TestConvertBatch_EmptyDocumentSet(t *testing.T) {
	fs := afero.NewMemMapFs()
	epubtest.Build(t, fs, "/books/images.epub", "images",
		epubtest.Resource("p1.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}),
		epubtest.Resource("style.css", "text/css", []byte("body{}")),
	)

	rec := &recorder{}
	result, err := newTestProcessor(t, fs).ConvertBatch([]string{"/books/images.epub"}, rec.onProgress, rec.onStatus)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ItemsConverted)
	assert.Equal(t, []progressEvent{{90, 100}, {100, 100}}, rec.progress)

	inNames, in := epubtest.ReadEntries(t, fs, "/books/images.epub")
	outNames, out := epubtest.ReadEntries(t, fs, "/books/简体化_images.epub")
	assert.Equal(t, inNames, outNames)
	assert.Equal(t, in, out)
}

func TestConvertBatch_ConversionError(t *testing.T) {
	fs := afero.NewMemMapFs()
	epubtest.Build(t, fs, "/books/book.epub", "book", epubtest.XHTML("a.xhtml", "漢"))

	p := newTestProcessor(t, fs)
	p.SetConverter(interfaces.ConverterFunc(func(string) (string, error) {
		return "", errors.New("dictionary unavailable")
	}))

	_, err := p.ConvertBatch([]string{"/books/book.epub"}, nil, nil)
	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeConversion), "got %v", err)
}

func TestConvertBatch_FileTooLarge(t *testing.T) {
	fs := afero.NewMemMapFs()
	epubtest.Build(t, fs, "/books/book.epub", "book", epubtest.XHTML("a.xhtml", "漢"))

	p := newTestProcessor(t, fs)
	p.maxFileSize = 16

	_, err := p.ConvertBatch([]string{"/books/book.epub"}, nil, nil)
	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeValidation), "got %v", err)
}

func TestConvertBatch_NoPaths(t *testing.T) {
	rec := &recorder{}
	_, err := newTestProcessor(t, afero.NewMemMapFs()).ConvertBatch(nil, rec.onProgress, rec.onStatus)

	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeNoInput))
	assert.Empty(t, rec.progress)
	assert.Equal(t, []string{"Error: no_input: no files found"}, rec.status)
}

func TestConvertInputs_DirectoryMode(t *testing.T) {
	fs := afero.NewMemMapFs()
	epubtest.Build(t, fs, "/lib/a.epub", "a", epubtest.XHTML("a.xhtml", "漢"))
	epubtest.Build(t, fs, "/lib/b.epub", "b", epubtest.XHTML("b.xhtml", "體"))
	require.NoError(t, afero.WriteFile(fs, "/lib/notes.txt", []byte("繁體"), 0644))

	rec := &recorder{}
	result, err := newTestProcessor(t, fs).ConvertInputs([]InputSpec{NewDirectoryInput("/lib")}, rec.onProgress, rec.onStatus)
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesConverted)
	assert.Equal(t, []string{"/lib/简体化_a.epub", "/lib/简体化_b.epub"}, result.Outputs)
	assert.Equal(t, []string{
		"Processing 1/2: a.epub",
		"Processing 2/2: b.epub",
		"Conversion complete: 2 file(s) converted",
	}, rec.status)

	exists, err := afero.Exists(fs, "/lib/简体化_notes.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestConvertInputs_NoInput(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/empty", 0755))
	require.NoError(t, afero.WriteFile(fs, "/empty/readme.md", []byte("x"), 0644))

	rec := &recorder{}
	result, err := newTestProcessor(t, fs).ConvertInputs([]InputSpec{NewDirectoryInput("/empty")}, rec.onProgress, rec.onStatus)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeNoInput))
	assert.Empty(t, rec.progress)
	assert.Equal(t, []string{"Error: no_input: no files found"}, rec.status)
}

func TestResolveInput(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"/d/b.epub", "/d/A.EPUB", "/d/c.txt", "/d/sub/inner.epub", "/single.epub"} {
		require.NoError(t, afero.WriteFile(fs, name, []byte("x"), 0644))
	}
	require.NoError(t, fs.MkdirAll("/d/folder.epub", 0755))

	paths, err := ResolveInput(fs, NewFileInput("/single.epub"), NewDirectoryInput("/d"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/single.epub", "/d/A.EPUB", "/d/b.epub"}, paths)

	_, err = ResolveInput(fs)
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeNoInput))

	_, err = ResolveInput(fs, NewDirectoryInput("/nowhere"))
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeIO))

	_, err = ResolveInput(fs, InputSpec{Path: "/d", Kind: "glob"})
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeValidation))
}

func TestDetectInput(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/d/book.epub", []byte("x"), 0644))

	spec, err := DetectInput(fs, "/d")
	require.NoError(t, err)
	assert.Equal(t, NewDirectoryInput("/d"), spec)

	spec, err = DetectInput(fs, "/d/book.epub")
	require.NoError(t, err)
	assert.Equal(t, NewFileInput("/d/book.epub"), spec)

	_, err = DetectInput(fs, "/missing")
	assert.Error(t, err)
}

func TestConverterFactory(t *testing.T) {
	cfg := config.NewConfig()
	factory := NewConverterFactory(cfg, logger.Nop())
	assert.Equal(t, []string{"full", "markup"}, factory.ListModes())

	conv, err := factory.CreateConverter()
	require.NoError(t, err)
	assert.Equal(t, "opencc-t2s", conv.Name())

	cfg.Mode = types.ModeMarkup
	conv, err = factory.CreateConverter()
	require.NoError(t, err)
	assert.Equal(t, "markup+opencc-t2s", conv.Name())

	got, err := conv.Convert(`<p title="漢">漢</p>`)
	require.NoError(t, err)
	assert.Equal(t, `<p title="漢">汉</p>`, got)

	cfg.Mode = "partial"
	_, err = factory.CreateConverter()
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeUnsupported))

	cfg.Mode = types.ModeFull
	cfg.Direction = "x2y"
	_, err = factory.CreateConverter()
	assert.True(t, utils.IsErrorType(err, utils.ErrorTypeValidation))
}

func TestConverterFactory_RegisterMode(t *testing.T) {
	cfg := config.NewConfig()
	factory := NewConverterFactory(cfg, logger.Nop())

	factory.RegisterMode("upper", func(base interfaces.Converter) interfaces.Converter {
		return interfaces.ConverterFunc(func(text string) (string, error) {
			out, err := base.Convert(text)
			return strings.ToUpper(out), err
		})
	})
	cfg.Mode = "upper"

	conv, err := factory.CreateConverter()
	require.NoError(t, err)
	got, err := conv.Convert("漢 abc")
	require.NoError(t, err)
	assert.Equal(t, "汉 ABC", got)
}
