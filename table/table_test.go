package table

import (
	"bytes"
	"errors"
	"testing"

	"github.com/twmodding/pack/binio"
	"github.com/twmodding/pack/schema"
)

func uint8Ptr(v uint8) *uint8 { return &v }

// TestBitwise_RoundTrip verifies bit-packed integers explode into boolean
// cells and pack back byte-exact.
func TestBitwise_RoundTrip(t *testing.T) {
	def := &schema.Definition{Version: 1, Fields: []schema.Field{
		{Name: "flags", Type: schema.I32, IsBitwise: 3},
		{Name: "key", Type: schema.StringU8},
	}}

	w := binio.NewWriter()
	w.I32(0b101)
	if err := w.StringU8("spearmen"); err != nil {
		t.Fatal(err)
	}
	raw := w.Bytes()

	rows, err := DecodeRows(def, binio.NewReader(raw), 1, DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	row := rows[0]
	if len(row) != 4 {
		t.Fatalf("cell count: %d", len(row))
	}
	if !row[0].Bool() || row[1].Bool() || !row[2].Bool() {
		t.Fatalf("bits: %v %v %v", row[0].Bool(), row[1].Bool(), row[2].Bool())
	}
	if row[3].Str() != "spearmen" {
		t.Fatalf("key: %q", row[3].Str())
	}

	out := binio.NewWriter()
	if err := EncodeRows(def, out, rows); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), raw) {
		t.Fatalf("encode mismatch:\n got %v\nwant %v", out.Bytes(), raw)
	}
}

// TestColourMerge_RoundTrip verifies split channel fields collapse into one
// merged hex cell and decompose back into their original slots.
func TestColourMerge_RoundTrip(t *testing.T) {
	def := &schema.Definition{Version: 1, Fields: []schema.Field{
		{Name: "name", Type: schema.StringU8},
		{Name: "tint_r", Type: schema.I32, ColourGroup: uint8Ptr(1)},
		{Name: "tint_g", Type: schema.I32, ColourGroup: uint8Ptr(1)},
		{Name: "tint_b", Type: schema.I32, ColourGroup: uint8Ptr(1)},
	}}

	w := binio.NewWriter()
	if err := w.StringU8("faction"); err != nil {
		t.Fatal(err)
	}
	w.I32(18)
	w.I32(52)
	w.I32(86)
	raw := w.Bytes()

	rows, err := DecodeRows(def, binio.NewReader(raw), 1, DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	row := rows[0]
	if len(row) != 2 {
		t.Fatalf("cell count: %d", len(row))
	}
	if row[1].Kind() != KindColour || row[1].Str() != "123456" {
		t.Fatalf("merged colour: %v %q", row[1].Kind(), row[1].Str())
	}

	out := binio.NewWriter()
	if err := EncodeRows(def, out, rows); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), raw) {
		t.Fatalf("encode mismatch:\n got %v\nwant %v", out.Bytes(), raw)
	}
}

// TestColourMerge_UnknownChannel verifies a colour-grouped field whose name
// carries no r/g/b token is rejected instead of silently dropped.
func TestColourMerge_UnknownChannel(t *testing.T) {
	def := &schema.Definition{Version: 1, Fields: []schema.Field{
		{Name: "tint_r", Type: schema.I32, ColourGroup: uint8Ptr(1)},
		{Name: "tint_alpha", Type: schema.I32, ColourGroup: uint8Ptr(1)},
	}}

	w := binio.NewWriter()
	w.I32(18)
	w.I32(255)

	_, err := DecodeRows(def, binio.NewReader(w.Bytes()), 1, DecodeOptions{})
	if !errors.Is(err, ErrUnknownColourChannel) {
		t.Fatalf("expected ErrUnknownColourChannel, got %v", err)
	}

	var fieldErr *FieldDecodeError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("error type: %v", err)
	}
	if fieldErr.Row != 1 || fieldErr.Column != 2 {
		t.Fatalf("error position: row %d column %d", fieldErr.Row, fieldErr.Column)
	}

	out := binio.NewWriter()
	err = EncodeRows(def, out, [][]Cell{{ColourCell("123456")}})
	if !errors.Is(err, ErrUnknownColourChannel) {
		t.Fatalf("encode: expected ErrUnknownColourChannel, got %v", err)
	}
}

// TestEnum_Mapping verifies decode display mapping and the encode fallback
// chain: case-insensitive lookup, numeric coercion, field default, error.
func TestEnum_Mapping(t *testing.T) {
	def := &schema.Definition{Version: 1, Fields: []schema.Field{
		{Name: "category", Type: schema.I32, DefaultValue: "0",
			EnumValues: map[int64]string{0: "infantry", 1: "cavalry"}},
	}}

	w := binio.NewWriter()
	w.I32(1)
	w.I32(9)

	rows, err := DecodeRows(def, binio.NewReader(w.Bytes()), 2, DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if rows[0][0].Str() != "cavalry" {
		t.Fatalf("known value: %q", rows[0][0].Str())
	}
	// Values outside the enum fall back to their decimal spelling.
	if rows[1][0].Str() != "9" {
		t.Fatalf("unknown value: %q", rows[1][0].Str())
	}

	encode := func(cell Cell) ([]byte, error) {
		out := binio.NewWriter()
		err := EncodeRows(def, out, [][]Cell{{cell}})
		return out.Bytes(), err
	}

	got, err := encode(StringCell(KindStringU8, "CAVALRY"))
	if err != nil || !bytes.Equal(got, []byte{1, 0, 0, 0}) {
		t.Fatalf("case-insensitive lookup: %v %v", got, err)
	}

	got, err = encode(StringCell(KindStringU8, "7"))
	if err != nil || !bytes.Equal(got, []byte{7, 0, 0, 0}) {
		t.Fatalf("numeric coercion: %v %v", got, err)
	}

	got, err = encode(StringCell(KindStringU8, "archers"))
	if err != nil || !bytes.Equal(got, []byte{0, 0, 0, 0}) {
		t.Fatalf("default fallback: %v %v", got, err)
	}

	def.Fields[0].DefaultValue = ""
	if _, err := encode(StringCell(KindStringU8, "archers")); !errors.Is(err, ErrNoEnumMatch) {
		t.Fatalf("expected ErrNoEnumMatch, got %v", err)
	}
}

// TestLenientDecode verifies truncated payloads keep the cells decoded
// before the failure instead of erroring.
func TestLenientDecode(t *testing.T) {
	def := &schema.Definition{Version: 1, Fields: []schema.Field{
		{Name: "key", Type: schema.StringU8},
		{Name: "hp", Type: schema.I32},
		{Name: "hidden", Type: schema.Boolean},
		{Name: "cost", Type: schema.I32},
		{Name: "note", Type: schema.StringU8},
	}}

	w := binio.NewWriter()
	if err := w.StringU8("unit"); err != nil {
		t.Fatal(err)
	}
	w.I32(100)
	truncated := w.Bytes()

	_, err := DecodeRows(def, binio.NewReader(truncated), 1, DecodeOptions{})
	var fieldErr *FieldDecodeError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("strict decode: %v", err)
	}
	if fieldErr.Row != 1 || fieldErr.Column != 3 {
		t.Fatalf("error position: row %d column %d", fieldErr.Row, fieldErr.Column)
	}

	rows, err := DecodeRows(def, binio.NewReader(truncated), 1, DecodeOptions{ReturnIncompleteRow: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Fatalf("partial row shape: %d rows, %d cells", len(rows), len(rows[0]))
	}
	if rows[0][0].Str() != "unit" || rows[0][1].Int() != 100 {
		t.Fatalf("partial row values: %q %d", rows[0][0].Str(), rows[0][1].Int())
	}
}

// TestSequence_RoundTrip verifies nested tables retain their byte span and
// re-encode either verbatim or through the nested codec.
func TestSequence_RoundTrip(t *testing.T) {
	def := &schema.Definition{Version: 1, Fields: []schema.Field{
		{Name: "key", Type: schema.StringU8},
		{Name: "abilities", Type: schema.SequenceU16, Sequence: &schema.Definition{
			Fields: []schema.Field{
				{Name: "ability", Type: schema.StringU8},
				{Name: "level", Type: schema.I32},
			},
		}},
	}}

	w := binio.NewWriter()
	if err := w.StringU8("hero"); err != nil {
		t.Fatal(err)
	}
	w.U16(2)
	for i, name := range []string{"charge", "rally"} {
		if err := w.StringU8(name); err != nil {
			t.Fatal(err)
		}
		w.I32(int32(i + 1))
	}
	raw := w.Bytes()

	rows, err := DecodeRows(def, binio.NewReader(raw), 1, DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	seq := rows[0][1].Seq()
	if len(seq.Rows) != 2 || seq.Rows[1][0].Str() != "rally" {
		t.Fatalf("nested rows: %+v", seq.Rows)
	}
	if seq.Raw == nil {
		t.Fatal("byte span not retained")
	}

	out := binio.NewWriter()
	if err := EncodeRows(def, out, rows); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), raw) {
		t.Fatalf("verbatim encode mismatch")
	}

	// Dropping the span forces the nested codec; the bytes must still match.
	seq.Raw = nil
	out = binio.NewWriter()
	if err := EncodeRows(def, out, rows); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), raw) {
		t.Fatalf("re-encoded sequence mismatch")
	}
}

// TestStringEscapes verifies control characters surface as visible escapes
// and return to control characters on encode.
func TestStringEscapes(t *testing.T) {
	def := &schema.Definition{Version: 1, Fields: []schema.Field{
		{Name: "text", Type: schema.StringU8},
	}}

	w := binio.NewWriter()
	if err := w.StringU8("line one\nline two\tend"); err != nil {
		t.Fatal(err)
	}
	raw := w.Bytes()

	rows, err := DecodeRows(def, binio.NewReader(raw), 1, DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if rows[0][0].Str() != `line one\\nline two\\tend` {
		t.Fatalf("escaped text: %q", rows[0][0].Str())
	}

	out := binio.NewWriter()
	if err := EncodeRows(def, out, rows); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), raw) {
		t.Fatalf("escape encode mismatch")
	}
}

// TestDB_RoundTrip verifies database payload framing survives a
// decode/encode cycle byte-exact.
func TestDB_RoundTrip(t *testing.T) {
	s := schema.New()
	s.Add("units_tables", schema.Definition{Version: 4, Fields: []schema.Field{
		{Name: "key", Type: schema.StringU8, IsKey: true},
		{Name: "hp", Type: schema.I32},
	}})

	w := binio.NewWriter()
	w.Raw([]byte{0xFD, 0xFE, 0xFC, 0xFF})
	if err := w.StringU16("0a1b2c3d"); err != nil {
		t.Fatal(err)
	}
	w.Raw([]byte{0xFC, 0xFD, 0xFE, 0xFF})
	w.I32(4)
	w.U8(1)
	w.U32(2)
	for _, row := range []struct {
		key string
		hp  int32
	}{{"pikemen", 95}, {"militia", 60}} {
		if err := w.StringU8(row.key); err != nil {
			t.Fatal(err)
		}
		w.I32(row.hp)
	}
	raw := w.Bytes()

	db, err := DecodeDB("units_tables", raw, s, DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if db.UniqueID() != "0a1b2c3d" {
		t.Fatalf("guid: %q", db.UniqueID())
	}
	if db.Definition().Version != 4 || db.RowCount() != 2 {
		t.Fatalf("shape: v%d rows %d", db.Definition().Version, db.RowCount())
	}
	if db.Rows()[1][0].Str() != "militia" {
		t.Fatalf("row value: %q", db.Rows()[1][0].Str())
	}

	out, err := db.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("encode mismatch:\n got %v\nwant %v", out, raw)
	}
}

// TestDB_TrailingBytes verifies leftover payload bytes fail the decode.
func TestDB_TrailingBytes(t *testing.T) {
	s := schema.New()
	s.Add("units_tables", schema.Definition{Version: 0, Fields: []schema.Field{
		{Name: "hp", Type: schema.I32},
	}})

	w := binio.NewWriter()
	w.U8(1)
	w.U32(1)
	w.I32(42)
	w.U8(0xEE)

	if _, err := DecodeDB("units_tables", w.Bytes(), s, DecodeOptions{}); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

// TestDB_UnknownDefinition verifies missing schema entries surface the
// schema sentinels.
func TestDB_UnknownDefinition(t *testing.T) {
	w := binio.NewWriter()
	w.Raw([]byte{0xFC, 0xFD, 0xFE, 0xFF})
	w.I32(9)
	w.U8(1)
	w.U32(0)

	if _, err := DecodeDB("units_tables", w.Bytes(), schema.New(), DecodeOptions{}); !errors.Is(err, schema.ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}

	s := schema.New()
	s.Add("units_tables", schema.Definition{Version: 2})
	if _, err := DecodeDB("units_tables", w.Bytes(), s, DecodeOptions{}); !errors.Is(err, schema.ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion, got %v", err)
	}
}

// TestLoc_RoundTrip verifies localisation framing and the fixed layout.
func TestLoc_RoundTrip(t *testing.T) {
	w := binio.NewWriter()
	w.U16(0xFEFF)
	w.Raw([]byte("LOC"))
	w.U8(0)
	w.U32(1)
	w.U32(2)
	for _, row := range []struct {
		key, text string
		tooltip   bool
	}{{"ui_yes", "Yes", false}, {"ui_hint", "Hold to charge", true}} {
		if err := w.StringU16(row.key); err != nil {
			t.Fatal(err)
		}
		if err := w.StringU16(row.text); err != nil {
			t.Fatal(err)
		}
		w.Bool(row.tooltip)
	}
	raw := w.Bytes()

	loc, err := DecodeLoc(raw, DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if loc.RowCount() != 2 || loc.Rows()[1][1].Str() != "Hold to charge" {
		t.Fatalf("loc rows: %+v", loc.Rows())
	}
	if !loc.Rows()[1][2].Bool() {
		t.Fatal("tooltip flag lost")
	}

	out, err := loc.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("encode mismatch")
	}
}

// TestLoc_BadHeader verifies malformed framing is rejected.
func TestLoc_BadHeader(t *testing.T) {
	if _, err := DecodeLoc([]byte("not a loc file"), DecodeOptions{}); !errors.Is(err, ErrBadHeader) {
		t.Fatalf("expected ErrBadHeader, got %v", err)
	}
}

// TestTable_RowOps verifies default rows and shape validation on mutation.
func TestTable_RowOps(t *testing.T) {
	def := &schema.Definition{Version: 1, Fields: []schema.Field{
		{Name: "key", Type: schema.StringU8, DefaultValue: "placeholder"},
		{Name: "hp", Type: schema.I32, DefaultValue: "100"},
		{Name: "hidden", Type: schema.Boolean},
	}}

	tbl := New(def, "units_tables")
	row := tbl.NewRow()
	if row[0].Str() != "placeholder" || row[1].Int() != 100 || row[2].Bool() {
		t.Fatalf("default row: %+v", row)
	}

	if err := tbl.InsertRow(0, row); err != nil {
		t.Fatal(err)
	}

	var arityErr *RowArityError
	if err := tbl.InsertRow(1, row[:2]); !errors.As(err, &arityErr) {
		t.Fatalf("expected RowArityError, got %v", err)
	}

	var typeErr *FieldTypeError
	bad := []Cell{BoolCell(true), IntCell(KindI32, 1), BoolCell(false)}
	if err := tbl.InsertRow(1, bad); !errors.As(err, &typeErr) {
		t.Fatalf("expected FieldTypeError, got %v", err)
	}

	if err := tbl.RemoveRow(5); !errors.Is(err, ErrRowOutOfRange) {
		t.Fatalf("expected ErrRowOutOfRange, got %v", err)
	}

	if err := tbl.RemoveRow(0); err != nil || tbl.RowCount() != 0 {
		t.Fatalf("remove: %v, rows %d", err, tbl.RowCount())
	}
}

// TestCell_Equal verifies float tolerance and kind discrimination.
func TestCell_Equal(t *testing.T) {
	if !FloatCell(KindF32, 1.0005).Equal(FloatCell(KindF32, 1.0)) {
		t.Error("floats within tolerance must compare equal")
	}
	if FloatCell(KindF32, 1.1).Equal(FloatCell(KindF32, 1.0)) {
		t.Error("floats outside tolerance must differ")
	}
	if IntCell(KindI32, 1).Equal(IntCell(KindI64, 1)) {
		t.Error("kinds must discriminate")
	}
	if !ColourCell("aabbcc").Equal(ColourCell("AABBCC")) {
		t.Error("colour hex must compare case-insensitively")
	}
}
