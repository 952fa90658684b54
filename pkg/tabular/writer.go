package tabular

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shoeboxhq/shoebox/pkg/errors"
)

// Write serializes rows under the given header order. Cells containing the
// delimiter, a quote, or a newline are quoted with internal quotes doubled.
func Write(w io.Writer, headers []string, rows []map[string]string, delim rune) error {
	var b strings.Builder
	writeCells(&b, headers, delim)
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = row[h]
		}
		writeCells(&b, cells, delim)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCells(b *strings.Builder, cells []string, delim rune) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteRune(delim)
		}
		b.WriteString(quoteCell(cell, delim))
	}
	b.WriteByte('\n')
}

func quoteCell(cell string, delim rune) string {
	if !strings.ContainsAny(cell, string(delim)+"\"\n\r") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// WriteFile writes a delimited file atomically: the content goes to a temp
// file in the target directory and is renamed into place only on success, so
// a failed run never corrupts the previous output.
func WriteFile(path string, headers []string, rows []map[string]string, delim rune) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()

	if err := Write(tmp, headers, rows, delim); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapIO("close", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
