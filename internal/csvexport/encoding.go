package csvexport

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/nao1215/paperstat/internal/model"
)

// Encoding is the byte encoding of an exported file.
type Encoding string

const (
	// UTF8BOM is UTF-8 with a leading byte-order mark. This is the default.
	UTF8BOM Encoding = "utf-8"

	// GB18030 is the Chinese national encoding, for spreadsheet tools that
	// ignore the BOM. No BOM is written.
	GB18030 Encoding = "gb18030"
)

// bom is the UTF-8 encoding of U+FEFF.
const bom = "\ufeff"

// ParseEncoding maps a user-supplied name to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return UTF8BOM, nil
	case "gb18030", "gbk":
		return GB18030, nil
	default:
		return "", fmt.Errorf("%w: unsupported encoding %q (use utf-8 or gb18030)", model.ErrInvalidArgument, name)
	}
}

// Encode converts CSV text to the bytes written to disk.
func (e Encoding) Encode(csvText string) ([]byte, error) {
	switch e {
	case GB18030:
		b, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte(csvText))
		if err != nil {
			return nil, fmt.Errorf("failed to encode as gb18030: %w", err)
		}
		return b, nil
	case UTF8BOM, "":
		return []byte(bom + csvText), nil
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", model.ErrInvalidArgument, string(e))
	}
}
