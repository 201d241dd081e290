package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"'pending_contact', 'contacted', 'confirmed', 'preparing'",
		"'ready_for_shipping', 'shipped', 'delivered', 'cancelled'",
		"CHECK (order_type IN ('manual_payment', 'online_payment'))",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_reference",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created_at",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
