package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenarios found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestFlightDefToModel(t *testing.T) {
	f, err := FlightDef{FlightNo: "AI101", Date: "2025-03-03", DepTime: "22:30", BlockMinutes: 90}.toModel()
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if f.SchedDep.Hour() != 22 || f.SchedDep.Minute() != 30 {
		t.Fatalf("unexpected departure %s", f.SchedDep)
	}
	if f.SchedArr.Day() != 4 {
		t.Fatalf("arrival should cross midnight, got %s", f.SchedArr)
	}
	if _, err := (FlightDef{Date: "2025-03-03", DepTime: "25:00"}).toModel(); err == nil {
		t.Fatal("expected invalid time error")
	}
}
