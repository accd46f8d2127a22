package export

import (
	"archive/zip"
	"bytes"
	"fmt"

	"mobimaster/backend/internal/domain"
)

// ReceiptsZIP bundles one printable receipt per transaction.
func ReceiptsZIP(shop ShopInfo, transactions []domain.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for i, tx := range transactions {
		name := tx.TransactionID
		if name == "" {
			name = fmt.Sprintf("receipt-%d", i+1)
		}
		entry, err := zw.Create(fmt.Sprintf("receipt_%s.html", name))
		if err != nil {
			return nil, fmt.Errorf("create zip entry: %w", err)
		}
		if _, err := entry.Write([]byte(ReceiptHTML(shop, tx))); err != nil {
			return nil, fmt.Errorf("write zip entry: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}
