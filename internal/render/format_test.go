package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mineral-insights/mineralboard/internal/model"
)

func TestKT_ThousandsSeparators(t *testing.T) {
	assert.Equal(t, "1,400", KT(1400))
	assert.Equal(t, "-12,345", KT(-12345.4))
	assert.Equal(t, "0", KT(0))
}

func TestOptionalKT(t *testing.T) {
	v := -300.0
	assert.Equal(t, "-300", OptionalKT(&v))
	assert.Equal(t, "0", OptionalKT(nil))
}

func TestDeficitYear(t *testing.T) {
	y := 2031
	assert.Equal(t, "2031", DeficitYear(&y))
	assert.Equal(t, "No deficit", DeficitYear(nil))
}

func TestFormatKPIs(t *testing.T) {
	year := 2028
	deficit := -1300.0
	gap := -130.0

	got := FormatKPIs(model.KPISet{
		FirstDeficitYear: &year,
		MaxDeficitKT:     &deficit,
		Gap2030KT:        &gap,
	})

	assert.Equal(t, "2028", got.FirstDeficitYear)
	assert.Equal(t, "-1,300", got.MaxDeficitKT)
	assert.Equal(t, "-130", got.Gap2030KT)
	assert.Equal(t, "0", got.Gap2040KT)
}

func TestFormatKPIs_AllMissing(t *testing.T) {
	got := FormatKPIs(model.KPISet{})

	assert.Equal(t, "No deficit", got.FirstDeficitYear)
	assert.Equal(t, "0", got.MaxDeficitKT)
	assert.Equal(t, "0", got.Gap2030KT)
	assert.Equal(t, "0", got.Gap2040KT)
}
