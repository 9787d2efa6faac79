// Package xlsx reads and writes the XLSX container format, a zip archive of
// XML parts, without depending on an office document SDK. The read side
// streams worksheet rows into typed values, resolving sheet names through
// the workbook's relationship indirection and applying shared string,
// number format and date conversions. The write side emits the minimal part
// set a conforming reader needs.
package xlsx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// File is an open workbook. The supporting tables (sheet directory,
// relationship map, shared strings, styles) are loaded once on open and
// read-only afterwards.
type File struct {
	zip           *zip.Reader
	closer        io.Closer
	parts         map[string]*zip.File
	hasWorkbook   bool
	date1904      bool
	sheets        []SheetDescriptor
	rels          relationshipMap
	sharedStrings sharedStrings
	styles        *styleSheet
}

// Open opens a workbook from a path, an already open *os.File, a
// *bytes.Reader or a raw []byte. Anything else fails with
// ErrInvalidArgument; a path that can not be opened, whether missing or
// unreadable, fails with ErrNotFound.
func Open(src any) (*File, error) {
	switch v := src.(type) {
	case string:
		fd, err := os.Open(v)
		if err != nil {
			// permission and path-shape failures land here too; every
			// unreadable path reports the same kind
			return nil, fmt.Errorf("could not open %q: %v: %w", v, err, ErrNotFound)
		}
		info, err := fd.Stat()
		if err != nil {
			_ = fd.Close()
			return nil, err
		}
		file, err := newFile(fd, info.Size())
		if err != nil {
			_ = fd.Close()
			return nil, err
		}
		file.closer = fd
		return file, nil
	case *os.File:
		info, err := v.Stat()
		if err != nil {
			return nil, err
		}
		return newFile(v, info.Size())
	case *bytes.Reader:
		return newFile(v, v.Size())
	case []byte:
		reader := bytes.NewReader(v)
		return newFile(reader, reader.Size())
	default:
		return nil, fmt.Errorf("could not open %T as a workbook: %w", src, ErrInvalidArgument)
	}
}

func newFile(reader io.ReaderAt, size int64) (*File, error) {
	zipReader, err := zip.NewReader(reader, size)
	if err != nil {
		return nil, fmt.Errorf("not a valid xlsx container: %v: %w", err, ErrMalformed)
	}

	result := &File{
		zip: zipReader,
	}
	if err := result.load(); err != nil {
		return nil, err
	}
	return result, nil
}

func (f *File) load() error {
	f.parts = make(map[string]*zip.File, len(f.zip.File))
	for _, file := range f.zip.File {
		f.parts[file.Name] = file
	}

	f.rels = relationshipMap{}
	if relsFile, ok := f.parts["xl/_rels/workbook.xml.rels"]; ok {
		if err := f.withPart(relsFile, func(rd io.Reader) error {
			rels, err := readRelationships(rd)
			if err != nil {
				return err
			}
			f.rels = rels
			return nil
		}); err != nil {
			return err
		}
	}

	if workbookFile, ok := f.parts["xl/workbook.xml"]; ok {
		f.hasWorkbook = true
		if err := f.withPart(workbookFile, func(rd io.Reader) error {
			wb, err := readWorkbook(rd)
			if err != nil {
				return err
			}
			f.date1904 = wb.WorkbookPr.Date1904
			f.sheets = wb.descriptors()
			return nil
		}); err != nil {
			return err
		}
	}

	if sharedStringsFile := f.findPart("sharedStrings.xml"); sharedStringsFile != nil {
		if err := f.withPart(sharedStringsFile, func(rd io.Reader) error {
			table, err := readSharedStrings(rd)
			if err != nil {
				return err
			}
			f.sharedStrings = table
			return nil
		}); err != nil {
			return err
		}
	}

	if stylesFile := f.findPart("styles.xml"); stylesFile != nil {
		if err := f.withPart(stylesFile, func(rd io.Reader) error {
			styles, err := readStyleSheet(rd)
			if err != nil {
				return err
			}
			f.styles = styles
			return nil
		}); err != nil {
			return err
		}
	}

	return nil
}

// withPart opens a part, runs fn over its stream and closes it on every
// exit path.
func (f *File) withPart(zipFile *zip.File, fn func(io.Reader) error) error {
	reader, err := zipFile.Open()
	if err != nil {
		return err
	}
	defer reader.Close()
	return fn(reader)
}

func (f *File) findPart(name string) *zip.File {
	for _, file := range f.parts {
		if strings.HasSuffix(file.Name, name) {
			return file
		}
	}
	return nil
}

// Close releases the underlying file when Open owned it.
func (f *File) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// Sheets returns the declared sheet descriptors in document order.
func (f *File) Sheets() []SheetDescriptor {
	result := make([]SheetDescriptor, len(f.sheets))
	copy(result, f.sheets)
	return result
}

// SheetNames returns the sheet names in document order.
func (f *File) SheetNames() []string {
	result := make([]string, len(f.sheets))
	for i, sheet := range f.sheets {
		result[i] = sheet.Name
	}
	return result
}

// findSheet resolves a selector, either a case-insensitive sheet name or a
// 1-based position in document order, to a descriptor. The position is
// strictly positional and unrelated to the author-assigned sheetId.
func (f *File) findSheet(selector any) (SheetDescriptor, error) {
	if !f.hasWorkbook {
		return SheetDescriptor{}, fmt.Errorf("xl/workbook.xml missing from archive: %w", ErrMalformed)
	}
	switch v := selector.(type) {
	case string:
		for _, sheet := range f.sheets {
			if strings.EqualFold(sheet.Name, v) {
				return sheet, nil
			}
		}
		return SheetDescriptor{}, fmt.Errorf("no worksheet named %q: %w", v, ErrSheetNotFound)
	case int:
		if v < 1 || v > len(f.sheets) {
			return SheetDescriptor{}, fmt.Errorf("no worksheet at position %d: %w", v, ErrSheetNotFound)
		}
		return f.sheets[v-1], nil
	default:
		return SheetDescriptor{}, fmt.Errorf("can not select a worksheet by %T: %w", selector, ErrInvalidArgument)
	}
}

// locateSheetPart resolves a descriptor's relationship id to its archive
// entry.
func (f *File) locateSheetPart(descriptor SheetDescriptor) (*zip.File, error) {
	target, ok := f.rels[descriptor.RelID]
	if !ok {
		return nil, fmt.Errorf("no relationship %q for worksheet %q: %w", descriptor.RelID, descriptor.Name, ErrSheetNotFound)
	}
	path := partPath(target)
	zipFile, ok := f.parts[path]
	if !ok {
		return nil, fmt.Errorf("no archive entry %q for worksheet %q: %w", path, descriptor.Name, ErrSheetNotFound)
	}
	return zipFile, nil
}

// OpenSheet opens a streaming reader over the selected worksheet. The
// selector is a case-insensitive name or a 1-based position.
func (f *File) OpenSheet(selector any) (*Sheet, error) {
	descriptor, err := f.findSheet(selector)
	if err != nil {
		return nil, err
	}
	zipFile, err := f.locateSheetPart(descriptor)
	if err != nil {
		return nil, err
	}
	return newSheetReader(zipFile, f)
}

// ReadRows materializes the selected worksheet through the options
// pipeline.
func (f *File) ReadRows(selector any, opts *Options) ([]Row, error) {
	sheet, err := f.OpenSheet(selector)
	if err != nil {
		return nil, err
	}
	defer sheet.Close()
	return readRows(sheet, opts)
}

// SheetInfo pairs a sheet name with its 1-based position in document order.
type SheetInfo struct {
	Name string
	Idx  int
}

// SheetRows is one sheet's decoded content as returned by ReadAllSheets.
type SheetRows struct {
	Name string
	Idx  int
	Rows []Row
}

// ListSheetNames opens src and lists its sheets in declaration order.
func ListSheetNames(src any) ([]SheetInfo, error) {
	file, err := Open(src)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	result := make([]SheetInfo, len(file.sheets))
	for i, sheet := range file.sheets {
		result[i] = SheetInfo{Name: sheet.Name, Idx: i + 1}
	}
	return result, nil
}

// ReadSheet opens src and decodes the selected worksheet.
func ReadSheet(src any, selector any, opts *Options) ([]Row, error) {
	file, err := Open(src)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return file.ReadRows(selector, opts)
}

// ReadAllSheets decodes every sheet of src. It is resilient per sheet: a
// sheet that fails to decode is represented by a single diagnostic row
// instead of aborting the batch.
func ReadAllSheets(src any, opts *Options) ([]SheetRows, error) {
	file, err := Open(src)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	result := make([]SheetRows, 0, len(file.sheets))
	for i := range file.sheets {
		rows, err := file.ReadRows(i+1, opts)
		if err != nil {
			rows = []Row{{Cells: map[string]any{"error": err.Error()}}}
		}
		result = append(result, SheetRows{
			Name: file.sheets[i].Name,
			Idx:  i + 1,
			Rows: rows,
		})
	}
	return result, nil
}
