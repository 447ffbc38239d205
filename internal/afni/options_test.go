package afni

import "testing"

func TestOptionsValidate(t *testing.T) {
	valid := DefaultOptions("/data/stats+tlrc.HEAD", "/data/ClustSim.niml")
	if err := valid.Validate(); err != nil {
		t.Fatalf("default options should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no dataset", func(o *Options) { o.Dataset = "" }},
		{"p uncorrected zero", func(o *Options) { o.PUncorrected = 0 }},
		{"p uncorrected above one", func(o *Options) { o.PUncorrected = 1.5 }},
		{"p corrected negative", func(o *Options) { o.PCorrected = -0.05 }},
		{"no nidm version", func(o *Options) { o.NIDMVersion = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := valid
			tc.mutate(&o)
			if err := o.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// The cluster simulation dataset is carried but not read, so it may be empty.
func TestOptionsClusterSimOptional(t *testing.T) {
	o := DefaultOptions("/data/stats+tlrc.HEAD", "")
	if err := o.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
