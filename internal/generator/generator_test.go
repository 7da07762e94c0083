package generator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/nlstn/go-odata-mock/internal/dataset"
	"github.com/nlstn/go-odata-mock/internal/metadata"
)

const rulesMetadata = `<Edmx><Schema Namespace="Shop">
  <EntityType Name="Customer">
    <Key><PropertyRef Name="ID"/></Key>
    <Property Name="ID" Type="Edm.Int32"/>
    <Property Name="Label" Type="Edm.String"/>
    <Property Name="Country" Type="Edm.String"/>
    <Property Name="Currency" Type="Edm.String"/>
    <Property Name="Tier" Type="Edm.String"/>
    <Property Name="Home" Type="Shop.Address"/>
    <Property Name="Legacy" Type="Shop.Unknown"/>
  </EntityType>
  <ComplexType Name="Address">
    <Property Name="Street" Type="Edm.String"/>
    <Property Name="Zip" Type="Edm.Int32"/>
  </ComplexType>
  <ComplexType Name="Node">
    <Property Name="Value" Type="Edm.String"/>
    <Property Name="Next" Type="Shop.Node"/>
  </ComplexType>
  <EntityType Name="Chain">
    <Key><PropertyRef Name="ID"/></Key>
    <Property Name="ID" Type="Edm.Int32"/>
    <Property Name="Head" Type="Shop.Node"/>
  </EntityType>
  <EntityContainer>
    <EntitySet Name="Customers" EntityType="Shop.Customer"/>
    <EntitySet Name="Chains" EntityType="Shop.Chain"/>
    <EntitySet Name="Ghosts" EntityType="Shop.Ghost"/>
  </EntityContainer>
</Schema></Edmx>`

func mustSchema(t *testing.T, text string) *metadata.Schema {
	t.Helper()
	doc, err := metadata.ParseXML(text)
	if err != nil {
		t.Fatalf("ParseXML() error: %v", err)
	}
	schema, err := metadata.Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return schema
}

func generateSet(t *testing.T, schema *metadata.Schema, cfg Config, setName string) ([]dataset.Record, *Context) {
	t.Helper()
	set, ok := schema.EntitySet(setName)
	if !ok {
		t.Fatalf("entity set %s not found", setName)
	}
	ctx := NewContext()
	records, err := New(schema, cfg, nil).EntitySet(ctx, set)
	if err != nil {
		t.Fatalf("EntitySet() error: %v", err)
	}
	return records, ctx
}

func TestEntitySetDefaults(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	records, _ := generateSet(t, schema, Config{NumberOfEntities: 3}, "Customers")

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, r := range records {
		want := "Label " + string(rune('1'+i))
		if r["Label"] != want {
			t.Errorf("record %d Label = %v, want %s", i, r["Label"], want)
		}
		id, ok := r["ID"].(int64)
		if !ok || id < 0 || id > 9999 {
			t.Errorf("record %d ID = %v", i, r["ID"])
		}
		home, ok := r["Home"].(dataset.Record)
		if !ok {
			t.Fatalf("record %d Home is %T", i, r["Home"])
		}
		if home["Street"] != "Street "+string(rune('1'+i)) {
			t.Errorf("record %d Home.Street = %v", i, home["Street"])
		}
		if _, ok := home["Zip"].(int64); !ok {
			t.Errorf("record %d Home.Zip = %v", i, home["Zip"])
		}
		legacy, ok := r["Legacy"].(dataset.Record)
		if !ok || len(legacy) != 0 {
			t.Errorf("record %d Legacy = %#v, want empty record", i, r["Legacy"])
		}
	}
}

func TestEntitySetDefaultCount(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	records, _ := generateSet(t, schema, Config{}, "Customers")
	if len(records) != DefaultNumberOfEntities {
		t.Errorf("expected %d records, got %d", DefaultNumberOfEntities, len(records))
	}
}

func TestEntitySetUndeclaredType(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	records, _ := generateSet(t, schema, Config{NumberOfEntities: 4}, "Ghosts")
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	for _, r := range records {
		if len(r) != 0 {
			t.Errorf("expected empty record, got %v", r)
		}
	}
}

func TestSelfNestedComplexTypeStops(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	records, _ := generateSet(t, schema, Config{NumberOfEntities: 1}, "Chains")

	head, ok := records[0]["Head"].(dataset.Record)
	if !ok {
		t.Fatalf("Head is %T", records[0]["Head"])
	}
	if head["Value"] != "Value 1" {
		t.Errorf("Head.Value = %v", head["Value"])
	}
	next, ok := head["Next"].(dataset.Record)
	if !ok || len(next) != 0 {
		t.Errorf("Head.Next = %#v, want empty record", head["Next"])
	}
}

func TestValuesRule(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	cfg := Config{
		NumberOfEntities: 20,
		Predefined: map[string]map[string]Rule{
			"Customer": {"Country": ValuesRule("DE", "PL", "US")},
		},
	}
	records, ctx := generateSet(t, schema, cfg, "Customers")

	allowed := map[any]bool{"DE": true, "PL": true, "US": true}
	for i, r := range records {
		if !allowed[r["Country"]] {
			t.Errorf("record %d Country = %v", i, r["Country"])
		}
	}

	chosen := ctx.ChosenValues("Customer", "Country")
	if len(chosen) != len(records) {
		t.Fatalf("expected %d chosen values, got %d", len(records), len(chosen))
	}
	for i, r := range records {
		if chosen[i] != r["Country"] {
			t.Errorf("chosen[%d] = %v, record has %v", i, chosen[i], r["Country"])
		}
	}
}

func TestValuesRuleDoesNotShiftTypeDefaults(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	plain, _ := generateSet(t, schema, Config{NumberOfEntities: 5}, "Customers")
	ruled, _ := generateSet(t, schema, Config{
		NumberOfEntities: 5,
		Predefined: map[string]map[string]Rule{
			"Customer": {"Country": ValuesRule("DE", "PL")},
		},
	}, "Customers")

	for i := range plain {
		if plain[i]["ID"] != ruled[i]["ID"] {
			t.Errorf("record %d ID changed: %v -> %v", i, plain[i]["ID"], ruled[i]["ID"])
		}
	}
}

func TestVariableRule(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	cfg := Config{
		NumberOfEntities: 10,
		Predefined: map[string]map[string]Rule{
			"Customer": {
				"Country":  VariableRule("countries"),
				"Currency": VariableRule("currency"),
			},
		},
		Variables: map[string]any{
			"countries": []string{"DE", "FR"},
			"currency":  "EUR",
		},
	}
	records, ctx := generateSet(t, schema, cfg, "Customers")

	for i, r := range records {
		if r["Country"] != "DE" && r["Country"] != "FR" {
			t.Errorf("record %d Country = %v", i, r["Country"])
		}
		if r["Currency"] != "EUR" {
			t.Errorf("record %d Currency = %v", i, r["Currency"])
		}
	}
	if got := len(ctx.ChosenValues("Customer", "Country")); got != 10 {
		t.Errorf("expected 10 chosen list values, got %d", got)
	}
	if got := ctx.ChosenValues("Customer", "Currency"); got != nil {
		t.Errorf("scalar variables must not be recorded, got %v", got)
	}
}

func TestVariableRuleNotFound(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	set, _ := schema.EntitySet("Customers")
	cfg := Config{
		NumberOfEntities: 1,
		Predefined: map[string]map[string]Rule{
			"Customer": {"Country": VariableRule("nope")},
		},
	}

	_, err := New(schema, cfg, nil).EntitySet(NewContext(), set)
	var notFound *VariableNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected VariableNotFoundError, got %v", err)
	}
	if notFound.Variable != "nope" || notFound.Property != "Country" {
		t.Errorf("unexpected error fields: %+v", notFound)
	}
}

func TestDependentRule(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	cfg := Config{
		NumberOfEntities: 12,
		Predefined: map[string]map[string]Rule{
			"Customer": {
				// Label is declared before Currency, which it reads.
				"Label":    DependentRule("Currency", DependentValue{Key: "EUR", Value: "gold"}),
				"Country":  ValuesRule("DE", "US", "XX"),
				"Currency": DependentRule("Country", DependentValue{Key: "DE", Value: "EUR"}, DependentValue{Key: "US", Value: "USD"}),
			},
		},
	}
	records, _ := generateSet(t, schema, cfg, "Customers")

	wantCurrency := map[any]any{"DE": "EUR", "US": "USD", "XX": MissingValue}
	for i, r := range records {
		if r["Currency"] != wantCurrency[r["Country"]] {
			t.Errorf("record %d: Country %v -> Currency %v", i, r["Country"], r["Currency"])
		}
		wantLabel := any(MissingValue)
		if r["Currency"] == "EUR" {
			wantLabel = "gold"
		}
		if r["Label"] != wantLabel {
			t.Errorf("record %d: Currency %v -> Label %v", i, r["Currency"], r["Label"])
		}
	}
}

func TestDependentRuleNumericKeys(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	cfg := Config{
		NumberOfEntities: 1,
		Predefined: map[string]map[string]Rule{
			"Customer": {
				"ID":    ValuesRule(float64(7)),
				"Label": DependentRule("ID", DependentValue{Key: float64(7), Value: "seven"}),
			},
		},
	}
	records, _ := generateSet(t, schema, cfg, "Customers")
	if records[0]["Label"] != "seven" {
		t.Errorf("Label = %v, want seven", records[0]["Label"])
	}
}

func TestDependentRuleUnknownReferenceFallsBack(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	cfg := Config{
		NumberOfEntities: 1,
		Predefined: map[string]map[string]Rule{
			"Customer": {"Label": DependentRule("DoesNotExist")},
		},
	}
	records, _ := generateSet(t, schema, cfg, "Customers")
	if records[0]["Label"] != "Label 1" {
		t.Errorf("Label = %v, want type default", records[0]["Label"])
	}
}

func TestDependentRuleCycle(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	set, _ := schema.EntitySet("Customers")
	cfg := Config{
		NumberOfEntities: 1,
		Predefined: map[string]map[string]Rule{
			"Customer": {
				"Country":  DependentRule("Currency"),
				"Currency": DependentRule("Country"),
			},
		},
	}

	_, err := New(schema, cfg, nil).EntitySet(NewContext(), set)
	var cycle *DependencyCycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected DependencyCycleError, got %v", err)
	}
	if !reflect.DeepEqual(cycle.Path, []string{"Country", "Currency", "Country"}) {
		t.Errorf("cycle path = %v", cycle.Path)
	}
	if !strings.Contains(err.Error(), "Country -> Currency -> Country") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestComplexTypeRules(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	cfg := Config{
		NumberOfEntities: 3,
		Predefined: map[string]map[string]Rule{
			"Address": {"Street": ValuesRule("Main St")},
		},
	}
	records, ctx := generateSet(t, schema, cfg, "Customers")
	for i, r := range records {
		if r["Home"].(dataset.Record)["Street"] != "Main St" {
			t.Errorf("record %d Home.Street = %v", i, r["Home"])
		}
	}
	if len(ctx.ChosenValues("Address", "Street")) != 3 {
		t.Errorf("complex type picks should be recorded under the complex type name")
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	cfg := Config{
		NumberOfEntities: 8,
		Predefined: map[string]map[string]Rule{
			"Customer": {"Country": ValuesRule("DE", "US")},
		},
	}
	a, _ := generateSet(t, schema, cfg, "Customers")
	b, _ := generateSet(t, schema, cfg, "Customers")
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs with fresh contexts differ")
	}
}

func TestPrimitiveValues(t *testing.T) {
	ctx := NewContext()
	dateRe := regexp.MustCompile(`^/Date\((\d+)\)/$`)
	offsetRe := regexp.MustCompile(`^/Date\(\d+\+0000\)/$`)
	timeRe := regexp.MustCompile(`^PT(\d+)H(\d+)M(\d+)S$`)
	guidRe := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	binaryRe := regexp.MustCompile(`^[01]{32}$`)

	for i := 0; i < 200; i++ {
		v, _ := primitiveValue(ctx.Random, metadata.KindDateTime, "D", 1)
		if !dateRe.MatchString(v.(string)) {
			t.Fatalf("DateTime %v", v)
		}
		v, _ = primitiveValue(ctx.Random, metadata.KindDateTimeOffset, "D", 1)
		if !offsetRe.MatchString(v.(string)) {
			t.Fatalf("DateTimeOffset %v", v)
		}
		v, _ = primitiveValue(ctx.Random, metadata.KindTime, "T", 1)
		m := timeRe.FindStringSubmatch(v.(string))
		if m == nil || len(m[1]) > 2 {
			t.Fatalf("Time %v", v)
		}
		v, _ = primitiveValue(ctx.Random, metadata.KindGuid, "G", 1)
		if !guidRe.MatchString(v.(string)) {
			t.Fatalf("Guid %v", v)
		}
		v, _ = primitiveValue(ctx.Random, metadata.KindBinary, "B", 1)
		if !binaryRe.MatchString(v.(string)) {
			t.Fatalf("Binary %v", v)
		}
		v, _ = primitiveValue(ctx.Random, metadata.KindDecimal, "P", 1)
		if d := v.(float64); d < 0 || d >= 10000 {
			t.Fatalf("Decimal %v", v)
		}
		v, _ = primitiveValue(ctx.Random, metadata.KindDouble, "P", 1)
		if d := v.(float64); d < 0 || d >= 10 {
			t.Fatalf("Double %v", v)
		}
		v, _ = primitiveValue(ctx.Random, metadata.KindSingle, "P", 1)
		if d := v.(float64); d < 0 || d >= 1e9 {
			t.Fatalf("Single %v", v)
		}
		for _, kind := range []metadata.EdmKind{metadata.KindByte, metadata.KindSByte} {
			v, _ = primitiveValue(ctx.Random, kind, "P", 1)
			if n := v.(int64); n < 0 || n > 9 {
				t.Fatalf("%v %v", kind, v)
			}
		}
		v, _ = primitiveValue(ctx.Random, metadata.KindBoolean, "P", 1)
		if _, ok := v.(bool); !ok {
			t.Fatalf("Boolean %v", v)
		}
	}

	if _, ok := primitiveValue(ctx.Random, metadata.KindComplex, "C", 1); ok {
		t.Error("complex kind must not produce a primitive value")
	}
}

func TestRandomDateRange(t *testing.T) {
	ctx := NewContext()
	for i := 0; i < 500; i++ {
		d := randomDate(ctx.Random, scopeDateTime)
		if d.Year() < 1999 || d.Year() > 2019 {
			t.Fatalf("year out of range: %v", d)
		}
		if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 || d.Nanosecond() != 0 {
			t.Fatalf("time of day must be zero: %v", d)
		}
	}
}

func TestStringFallbackIndex(t *testing.T) {
	schema := mustSchema(t, rulesMetadata)
	g := New(schema, Config{}, nil)
	v, err := g.defaultValue(NewContext(), metadata.Property{Name: "Label", Schema: "Edm", Type: "String"}, 0)
	if err != nil {
		t.Fatalf("defaultValue() error: %v", err)
	}
	re := regexp.MustCompile(`^Label \d{3,5}$`)
	if !re.MatchString(v.(string)) {
		t.Errorf("fallback value = %v", v)
	}
}

func TestSameValue(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{int64(3), float64(3), true},
		{int64(3), float64(3.5), false},
		{"a", "a", true},
		{"3", int64(3), false},
		{true, true, true},
		{nil, nil, true},
		{nil, "x", false},
	}
	for _, tt := range tests {
		if got := sameValue(tt.a, tt.b); got != tt.want {
			t.Errorf("sameValue(%v, %v) = %v", tt.a, tt.b, got)
		}
	}
}
