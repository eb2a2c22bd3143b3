package flowmatic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(t *testing.T, s string) Scalar {
	t.Helper()
	v, err := ParseNumber(s)
	require.NoError(t, err)
	return v
}

func recWith(fields map[string]Scalar) Record {
	r := NewRecord()
	for k, v := range fields {
		r.Set(k, v)
	}
	return r
}

const twoFileMatchProgram = `(1) INPUT CUSTOMER-FILE FILE-A PRICE-FILE FILE-B; OUTPUT BILLED-FILE FILE-C; HSP PRINTER.
(2) READ-ITEM A; IF END OF DATA JUMP TO OPERATION 8.
(3) READ-ITEM B; IF END OF DATA JUMP TO OPERATION 8.
(4) COMPARE PRODUCT-NO (A) WITH PRODUCT-NO (B); IF EQUAL GO TO OPERATION 6; OTHERWISE GO TO OPERATION 3.
(5) STOP.
(6) MOVE PRODUCT-NO (A) TO PRODUCT-NO (C); MULTIPLY QUANTITY (A) BY UNIT-PRICE (B) GIVING LINE-TOTAL (C); WRITE-ITEM C.
(7) JUMP TO OPERATION 2.
(8) CLOSE-OUT FILES A B C; STOP.`

func TestScenarioTwoWayFileMatch(t *testing.T) {
	interp := New(DefaultConfig())
	require.NoError(t, interp.LoadProgram(twoFileMatchProgram))
	require.NoError(t, interp.LoadFile("A", []Record{
		recWith(map[string]Scalar{"PRODUCT-NO": NewText("P001"), "QUANTITY": NewInt(10)}),
		recWith(map[string]Scalar{"PRODUCT-NO": NewText("P002"), "QUANTITY": NewInt(25)}),
	}))
	require.NoError(t, interp.LoadFile("B", []Record{
		recWith(map[string]Scalar{"PRODUCT-NO": NewText("P001"), "UNIT-PRICE": num(t, "12.50")}),
		recWith(map[string]Scalar{"PRODUCT-NO": NewText("P002"), "UNIT-PRICE": num(t, "8.75")}),
	}))
	require.NoError(t, interp.Run())

	out, err := interp.GetOutput("C")
	require.NoError(t, err)
	require.Len(t, out, 2)

	v0, _ := out[0].Get("LINE-TOTAL")
	assert.Equal(t, "125.00", v0.Number().StringFixed(2))
	v1, _ := out[1].Get("LINE-TOTAL")
	assert.Equal(t, "218.75", v1.Number().StringFixed(2))
}

func TestScenarioAdvanceOnLess(t *testing.T) {
	interp := New(DefaultConfig())
	require.NoError(t, interp.LoadProgram(twoFileMatchProgram))
	require.NoError(t, interp.LoadFile("A", []Record{
		recWith(map[string]Scalar{"PRODUCT-NO": NewText("P001"), "QUANTITY": NewInt(1)}),
	}))
	require.NoError(t, interp.LoadFile("B", []Record{
		recWith(map[string]Scalar{"PRODUCT-NO": NewText("P000"), "UNIT-PRICE": num(t, "1.00")}),
		recWith(map[string]Scalar{"PRODUCT-NO": NewText("P001"), "UNIT-PRICE": num(t, "2.00")}),
	}))
	require.NoError(t, interp.Run())

	out, err := interp.GetOutput("C")
	require.NoError(t, err)
	require.Len(t, out, 1)
	v, _ := out[0].Get("LINE-TOTAL")
	assert.Equal(t, "2.00", v.Number().StringFixed(2))
}

func TestScenarioSetOperationOverride(t *testing.T) {
	src := `(1) SET OPERATION 6 TO GO TO OPERATION 7; JUMP TO OPERATION 6.
(6) JUMP TO OPERATION 8.
(7) STOP.
(8) STOP.`
	interp := New(DefaultConfig())
	require.NoError(t, interp.LoadProgram(src))
	require.NoError(t, interp.Run())
}

func TestScenarioEndOfDataWithinOperation(t *testing.T) {
	src := `(1) INPUT CUSTOMER-FILE FILE-A.
(2) READ-ITEM A; IF END OF DATA GO TO OPERATION 8; JUMP TO OPERATION 3.
(3) STOP.
(8) STOP.`
	interp := New(DefaultConfig())
	require.NoError(t, interp.LoadProgram(src))
	require.NoError(t, interp.LoadFile("A", nil))
	require.NoError(t, interp.Run())
}

func TestScenarioPrintItem(t *testing.T) {
	src := `(1) HSP PRINTER.
(2) MOVE "total due" TO CUSTOMER-NAME (PRINTER); MOVE 12.5 TO AMOUNT (PRINTER); PRINT-ITEM PRINTER; STOP.`
	interp := New(DefaultConfig())
	require.NoError(t, interp.LoadProgram(src))
	require.NoError(t, interp.Run())

	assert.Equal(t, []string{"CUSTOMER-NAME=TOTAL DUE,AMOUNT=12.50"}, interp.GetPrinterOutput())
}

func TestScenarioDecimalExactness(t *testing.T) {
	src := `(1) MOVE 0.1 TO X (R); MOVE 0.2 TO Y (R); MULTIPLY X (R) BY Y (R) GIVING Z (R); STOP.`
	interp := New(DefaultConfig())
	require.NoError(t, interp.LoadProgram(src))
	require.NoError(t, interp.Run())
}

func TestScenarioHaltViaFallthrough(t *testing.T) {
	src := `(1) OUTPUT BILLED-FILE FILE-C.
(9) MOVE "X" TO STATUS (C); WRITE-ITEM C.`
	interp := New(DefaultConfig())
	require.NoError(t, interp.LoadProgram(src))
	require.NoError(t, interp.Run())

	out, err := interp.GetOutput("C")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestRunIsDeterministic(t *testing.T) {
	inputsA := []Record{recWith(map[string]Scalar{"PRODUCT-NO": NewText("P001"), "QUANTITY": NewInt(10)})}
	inputsB := []Record{recWith(map[string]Scalar{"PRODUCT-NO": NewText("P001"), "UNIT-PRICE": num(t, "12.50")})}

	run := func() []Record {
		interp := New(DefaultConfig())
		require.NoError(t, interp.LoadProgram(twoFileMatchProgram))
		require.NoError(t, interp.LoadFile("A", inputsA))
		require.NoError(t, interp.LoadFile("B", inputsB))
		require.NoError(t, interp.Run())
		out, err := interp.GetOutput("C")
		require.NoError(t, err)
		return out
	}

	first := run()
	second := run()
	require.Len(t, first, len(second))
	for i := range first {
		v1, _ := first[i].Get("LINE-TOTAL")
		v2, _ := second[i].Get("LINE-TOTAL")
		assert.True(t, v1.Equal(v2))
	}
}

func TestLoadProgramSurfacesSyntaxErrorInsteadOfPanicking(t *testing.T) {
	interp := New(DefaultConfig())
	err := interp.LoadProgram(`(1) FROBNICATE A; STOP.`)
	require.Error(t, err)
	_, ok := err.(*FlowMaticError)
	assert.True(t, ok)
}

func TestLoadProgramSurfacesDuplicateOperation(t *testing.T) {
	interp := New(DefaultConfig())
	err := interp.LoadProgram(`(1) STOP. (1) STOP.`)
	require.Error(t, err)
}

func TestRunBeforeLoadProgramIsAnError(t *testing.T) {
	interp := New(DefaultConfig())
	err := interp.Run()
	assert.Error(t, err)
}

func TestGetOutputOnUnknownAlias(t *testing.T) {
	interp := New(DefaultConfig())
	require.NoError(t, interp.LoadProgram(`(1) STOP.`))
	_, err := interp.GetOutput("Z")
	assert.Error(t, err)
}
