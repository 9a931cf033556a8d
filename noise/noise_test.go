package noise

import (
	"math"
	"testing"
)

func TestPerlinDeterministic(t *testing.T) {
	for _, seed := range []int64{0, 1, 42, -7, 123456789} {
		a := NewPerlin(seed)
		b := NewPerlin(seed)
		for i := 0; i < 200; i++ {
			x := float64(i)*0.37 - 20
			y := float64(i)*0.91 + 3
			va, vb := a.Eval2(x, y), b.Eval2(x, y)
			if va != vb {
				t.Fatalf("seed %d: Eval2(%v,%v) not bit-identical: %v vs %v", seed, x, y, va, vb)
			}
			if a.Eval2(x, y) != va {
				t.Fatalf("seed %d: repeated Eval2 changed", seed)
			}
		}
	}
}

func TestPerlinRange(t *testing.T) {
	p := NewPerlin(99)
	for i := 0; i < 5000; i++ {
		x := float64(i)*0.173 - 400
		y := float64(i%97)*0.311 + 11
		z := float64(i%31) * 0.57
		if v := p.Eval2(x, y); v < -1 || v > 1 {
			t.Fatalf("Eval2 out of range: %v", v)
		}
		if v := p.Eval3(x, y, z); v < -1 || v > 1 {
			t.Fatalf("Eval3 out of range: %v", v)
		}
	}
}

func TestPerlinZeroAtLattice(t *testing.T) {
	p := NewPerlin(5)
	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			if v := p.Eval2(float64(x), float64(y)); v != 0 {
				t.Errorf("Eval2(%d,%d) = %v, want 0 at lattice point", x, y, v)
			}
		}
	}
}

func TestSeedsDiffer(t *testing.T) {
	a := NewPerlin(1)
	b := NewPerlin(2)
	same := 0
	for i := 0; i < 100; i++ {
		x := float64(i)*0.41 + 0.5
		if a.Eval2(x, 0.25) == b.Eval2(x, 0.25) {
			same++
		}
	}
	if same > 10 {
		t.Errorf("seeds 1 and 2 agree on %d/100 samples", same)
	}
}

func TestFractalRange(t *testing.T) {
	tests := []struct {
		name        string
		octaves     int
		persistence float64
		scale       float64
	}{
		{"single octave", 1, 0.5, 0.05},
		{"many octaves", 12, 0.5, 0.01},
		{"high persistence", 6, 0.95, 0.1},
		{"persistence above one", 5, 1.7, 0.03},
		{"negative persistence", 5, -0.5, 0.03},
		{"zero persistence", 8, 0, 0.2},
		{"zero scale", 6, 0.5, 0},
		{"zero octaves", 0, 0.5, 0.1},
	}

	for _, basis := range []Basis{BasisPerlin, BasisSimplex} {
		src := NewSource(basis, 77)
		for _, tt := range tests {
			t.Run(basis.String()+"/"+tt.name, func(t *testing.T) {
				f := Fractal{Src: src, Octaves: tt.octaves, Persistence: tt.persistence, Scale: tt.scale}
				for i := 0; i < 500; i++ {
					x := float64(i)*3.7 - 100
					y := float64(i%50) * 5.3
					if v := f.At(x, y); v < 0 || v > 1 || math.IsNaN(v) {
						t.Fatalf("At(%v,%v) = %v, outside [0,1]", x, y, v)
					}
					if v := f.Seamless(x, y, 512); v < 0 || v > 1 || math.IsNaN(v) {
						t.Fatalf("Seamless(%v,%v) = %v, outside [0,1]", x, y, v)
					}
					if v := f.At3(x, y, x*0.5); v < 0 || v > 1 || math.IsNaN(v) {
						t.Fatalf("At3 = %v, outside [0,1]", v)
					}
				}
			})
		}
	}
}

func TestZeroPersistenceCollapsesToFirstOctave(t *testing.T) {
	src := NewPerlin(3)
	one := Fractal{Src: src, Octaves: 1, Persistence: 0.5, Scale: 0.1}
	many := Fractal{Src: src, Octaves: 8, Persistence: 0, Scale: 0.1}
	for i := 0; i < 50; i++ {
		x, y := float64(i)*1.3, float64(i)*0.7
		if math.Abs(one.At(x, y)-many.At(x, y)) > 1e-12 {
			t.Fatalf("zero persistence should reduce to one octave at (%v,%v)", x, y)
		}
	}
}

func TestSeamlessWrapsHorizontally(t *testing.T) {
	tests := []struct {
		name  string
		width float64
	}{
		{"width 64", 64},
		{"width 256", 256},
		{"width 2048", 2048},
	}

	xs := []float64{0, 0.5, 13.125, 63.75, 100.25, 1000.5}
	for _, basis := range []Basis{BasisPerlin, BasisSimplex} {
		f := Fractal{Src: NewSource(basis, 11), Octaves: 6, Persistence: 0.5, Scale: 0.0625}
		for _, tt := range tests {
			t.Run(basis.String()+"/"+tt.name, func(t *testing.T) {
				for _, x := range xs {
					for _, y := range []float64{0, 7.5, 300.25} {
						base := f.Seamless(x, y, tt.width)
						for k := 1; k <= 3; k++ {
							got := f.Seamless(x+float64(k)*tt.width, y, tt.width)
							if got != base {
								t.Errorf("Seamless(%v+%d*w) = %v, want %v", x, k, got, base)
							}
						}
						if got := f.Seamless(x-tt.width, y, tt.width); got != base {
							t.Errorf("Seamless(%v-w) = %v, want %v", x, got, base)
						}
					}
				}
			})
		}
	}
}

func TestSeamlessNonPositiveWidthFallsBack(t *testing.T) {
	f := Fractal{Src: NewPerlin(8), Octaves: 4, Persistence: 0.5, Scale: 0.05}
	if f.Seamless(10.5, 3.25, 0) != f.At(10.5, 3.25) {
		t.Error("width 0 should sample unwrapped fractal noise")
	}
}

func TestTurbulenceRange(t *testing.T) {
	f := Fractal{Src: NewPerlin(4), Octaves: 5, Persistence: 0.6, Scale: 0.02}
	for i := 0; i < 1000; i++ {
		v := f.Turbulence(float64(i)*2.1, float64(i%40)*3.3, 512)
		if v < 0 || v > 1 {
			t.Fatalf("Turbulence = %v, outside [0,1]", v)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		v, width, want float64
	}{
		{0, 10, 0},
		{10, 10, 0},
		{12.5, 10, 2.5},
		{-2.5, 10, 7.5},
		{-10, 10, 0},
		{35, 10, 5},
	}
	for _, tt := range tests {
		if got := Wrap(tt.v, tt.width); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Wrap(%v, %v) = %v, want %v", tt.v, tt.width, got, tt.want)
		}
	}
}

func TestParseBasis(t *testing.T) {
	tests := []struct {
		in      string
		want    Basis
		wantErr bool
	}{
		{"", BasisPerlin, false},
		{"perlin", BasisPerlin, false},
		{"simplex", BasisSimplex, false},
		{"opensimplex", BasisSimplex, false},
		{"worley", BasisPerlin, true},
	}
	for _, tt := range tests {
		got, err := ParseBasis(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBasis(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseBasis(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHashSeedStable(t *testing.T) {
	if HashSeed(1, "earth") != HashSeed(1, "earth") {
		t.Error("HashSeed not stable")
	}
	if HashSeed(1, "earth") == HashSeed(1, "mars") {
		t.Error("different identities should hash to different seeds")
	}
}
