package factory

import "testing"

type fakeSink struct {
	Bucket string
	Batch  int
}

type fakeSinkConf struct {
	Bucket string `json:"bucket"`
	Batch  int    `json:"batch_size"`
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*fakeSink]()
	if err := reg.Register("fake", func(conf map[string]any) (*fakeSink, error) {
		var c fakeSinkConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &fakeSink{Bucket: c.Bucket, Batch: c.Batch}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "fake", Conf: map[string]any{
		"bucket":     "runs",
		"batch_size": 50,
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.Bucket != "runs" || inst.Batch != 50 {
		t.Fatalf("decoded %+v", inst)
	}
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", nil); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); err == nil {
		t.Fatal("expected unknown type error")
	}
}

func TestDecodeTypeMismatch(t *testing.T) {
	var c fakeSinkConf
	if err := Decode(map[string]any{"batch_size": "many"}, &c); err == nil {
		t.Fatal("expected decode error")
	}
}
