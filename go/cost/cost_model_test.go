// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cost

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCostModel_OverridesOnlyListedCoefficients(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(`{"addConstant": 7, "readConstant": 9}`), 0600); err != nil {
		t.Fatalf("failed to write model: %v", err)
	}

	model, err := LoadCostModel(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DefaultCostModel()
	want.AddConstant = 7
	want.ReadConstant = 9
	if want != model {
		t.Errorf("unexpected cost model, wanted %+v, got %+v", want, model)
	}
}

func TestLoadCostModel_ReportsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadCostModel(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte(`{"addConstant": -1}`), 0600); err != nil {
		t.Fatalf("failed to write model: %v", err)
	}
	if _, err := LoadCostModel(path); err == nil {
		t.Errorf("expected an error for a negative coefficient")
	}
}
