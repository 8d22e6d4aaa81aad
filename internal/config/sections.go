package config

import "strconv"

// SectionDefaults describes the seat sections generated for every new event:
// rows A and B, each split into numbered sections with a fixed capacity and
// price.
type SectionDefaults struct {
	ACount      int   `env:"SECTION_A_COUNT"       env-default:"20"    validate:"min=0"`
	ASeats      int   `env:"SECTION_A_SEATS"       env-default:"1000"  validate:"min=0"`
	APriceCents int64 `env:"SECTION_A_PRICE_CENTS" env-default:"45000" validate:"min=0"`
	BCount      int   `env:"SECTION_B_COUNT"       env-default:"24"    validate:"min=0"`
	BSeats      int   `env:"SECTION_B_SEATS"       env-default:"800"   validate:"min=0"`
	BPriceCents int64 `env:"SECTION_B_PRICE_CENTS" env-default:"30000" validate:"min=0"`
}

// SectionTemplate is one section to create along with its price.
type SectionTemplate struct {
	Label      string
	TotalSeats int
	PriceCents int64
}

// Templates expands the defaults into A1..An followed by B1..Bm.
func (d SectionDefaults) Templates() []SectionTemplate {
	out := make([]SectionTemplate, 0, d.ACount+d.BCount)
	for i := 1; i <= d.ACount; i++ {
		out = append(out, SectionTemplate{Label: "A" + strconv.Itoa(i), TotalSeats: d.ASeats, PriceCents: d.APriceCents})
	}
	for i := 1; i <= d.BCount; i++ {
		out = append(out, SectionTemplate{Label: "B" + strconv.Itoa(i), TotalSeats: d.BSeats, PriceCents: d.BPriceCents})
	}
	return out
}
