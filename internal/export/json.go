package export

import (
	"fmt"
	"os"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/invoice"
)

// WriteJSON serializes records with invoice.MarshalRecords and writes them to path,
// replacing any existing file. It returns the number of bytes written.
func WriteJSON(path string, records []invoice.DocumentRecord) (n int, err error) {
	data, err := invoice.MarshalRecords(records)
	if err != nil {
		return 0, fmt.Errorf("serialize records: %w", err)
	}
	if err := invoice.ValidateRecordsJSON(data); err != nil {
		return 0, fmt.Errorf("serialized records: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, common.IOError("open "+path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = common.IOError("close "+path, cerr)
		}
	}()

	n, err = f.Write(data)
	if err != nil {
		return n, common.IOError("write "+path, err)
	}
	return n, nil
}
