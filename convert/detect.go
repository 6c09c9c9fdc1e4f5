package convert

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

const documentExt = ".mjml"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// isArchiveFile checks file signature, archive name does not matter.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// filetype needs at most 262 bytes
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// isDocumentName reports whether file name looks like markup document.
func isDocumentName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), documentExt)
}

// documentText converts raw file content to parser input dropping UTF-8
// byte order mark.
func documentText(data []byte) string {
	return string(bytes.TrimPrefix(data, utf8BOM))
}
