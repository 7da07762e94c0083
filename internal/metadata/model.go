package metadata

// Property is a structural property declared on an entity or complex type.
type Property struct {
	Name string
	// Schema is the namespace part of the declared type ("Edm" for primitives).
	Schema string
	// Type is the unqualified type name ("String", "Int32" or a complex type name).
	Type      string
	Precision string
	Scale     string
}

// QualifiedType returns the declared type as written in the metadata document.
func (p Property) QualifiedType() string {
	if p.Schema == "" {
		return p.Type
	}
	return p.Schema + "." + p.Type
}

// Kind classifies the property's type for value generation.
func (p Property) Kind() EdmKind {
	return KindOf(p.Type)
}

// EntityType is a named record schema with properties and an ordered key.
type EntityType struct {
	Name       string
	Properties []Property
	// Keys lists key property names in declaration order (significant for composite keys).
	Keys []string
}

// Property looks up a property by name.
func (t *EntityType) Property(name string) (*Property, bool) {
	return findProperty(t.Properties, name)
}

// ComplexType is a keyless structured value type.
type ComplexType struct {
	Name       string
	Properties []Property
}

// Property looks up a property by name.
func (t *ComplexType) Property(name string) (*Property, bool) {
	return findProperty(t.Properties, name)
}

func findProperty(props []Property, name string) (*Property, bool) {
	for i := range props {
		if props[i].Name == name {
			return &props[i], true
		}
	}
	return nil, false
}

// NavigationEndpoint is one side of a navigation property, resolved through its association.
type NavigationEndpoint struct {
	Role         string
	EntitySet    string
	PropRef      []string
	Multiplicity string
}

// NavigationProperty links two entity sets through an association.
type NavigationProperty struct {
	Name string
	From NavigationEndpoint
	To   NavigationEndpoint
}

// HasReferentialConstraint reports whether both ends carry property references.
func (n *NavigationProperty) HasReferentialConstraint() bool {
	return len(n.From.PropRef) > 0 && len(n.To.PropRef) > 0
}

// EntitySet is a named collection of entities of one entity type.
type EntitySet struct {
	Name   string
	Schema string
	Type   string
	Keys   []string
	// KeysType maps each key name to its qualified EDM type ("Edm.String").
	KeysType map[string]string
	// NavigationProperties are kept in declaration order.
	NavigationProperties []*NavigationProperty
	navIndex             map[string]*NavigationProperty
}

// QualifiedType returns "<schema>.<type>", the value used for __metadata.type.
func (s *EntitySet) QualifiedType() string {
	if s.Schema == "" {
		return s.Type
	}
	return s.Schema + "." + s.Type
}

// NavigationProperty looks up a navigation property by name.
func (s *EntitySet) NavigationProperty(name string) (*NavigationProperty, bool) {
	nav, ok := s.navIndex[name]
	return nav, ok
}

func (s *EntitySet) addNavigationProperty(nav *NavigationProperty) {
	if s.navIndex == nil {
		s.navIndex = make(map[string]*NavigationProperty)
	}
	if _, exists := s.navIndex[nav.Name]; exists {
		return
	}
	s.navIndex[nav.Name] = nav
	s.NavigationProperties = append(s.NavigationProperties, nav)
}

// Schema is the parsed metadata model. It is built once and not modified afterwards.
type Schema struct {
	// EntitySets are kept in document order.
	EntitySets   []*EntitySet
	entitySets   map[string]*EntitySet
	entityTypes  map[string]*EntityType
	complexTypes map[string]*ComplexType
}

// EntitySet looks up an entity set by name.
func (s *Schema) EntitySet(name string) (*EntitySet, bool) {
	set, ok := s.entitySets[name]
	return set, ok
}

// EntityType looks up an entity type by unqualified name.
func (s *Schema) EntityType(name string) (*EntityType, bool) {
	t, ok := s.entityTypes[name]
	return t, ok
}

// ComplexType looks up a complex type by unqualified name.
func (s *Schema) ComplexType(name string) (*ComplexType, bool) {
	t, ok := s.complexTypes[name]
	return t, ok
}
