package metadata

import (
	"regexp"
	"strings"
)

// entitySetTypePattern splits "Name.Space.Type" into namespace and type; namespaces may contain dots.
var entitySetTypePattern = regexp.MustCompile(`^(?:(.*)\.)?(.*)$`)

// index holds the name-keyed lookups built in a single pass over the document.
type index struct {
	entityTypeNodes  map[string]Node
	associations     map[string]Node
	associationSets  map[string]Node
	principals       []Node
	dependents       []Node
	entityTypeOrder  []string
	complexTypeNodes []Node
}

func buildIndex(doc Document) *index {
	idx := &index{
		entityTypeNodes: make(map[string]Node),
		associations:    make(map[string]Node),
		associationSets: make(map[string]Node),
		principals:      doc.FindByTag("Principal"),
		dependents:      doc.FindByTag("Dependent"),
	}

	for _, n := range doc.FindByTag("EntityType") {
		name := attr(n, "Name")
		if _, exists := idx.entityTypeNodes[name]; exists {
			continue
		}
		idx.entityTypeNodes[name] = n
		idx.entityTypeOrder = append(idx.entityTypeOrder, name)
	}
	idx.complexTypeNodes = doc.FindByTag("ComplexType")

	for _, n := range doc.FindByTag("Association") {
		name := attr(n, "Name")
		if _, exists := idx.associations[name]; !exists {
			idx.associations[name] = n
		}
	}
	for _, n := range doc.FindByTag("AssociationSet") {
		name := attr(n, "Association")
		if _, exists := idx.associationSets[name]; !exists {
			idx.associationSets[name] = n
		}
	}

	return idx
}

// Parse builds the schema model from a metadata document.
func Parse(doc Document) (*Schema, error) {
	if doc == nil {
		return nil, &ParseError{Err: errNoDocument}
	}

	idx := buildIndex(doc)
	schema := &Schema{
		entitySets:   make(map[string]*EntitySet),
		entityTypes:  make(map[string]*EntityType),
		complexTypes: make(map[string]*ComplexType),
	}

	for _, name := range idx.entityTypeOrder {
		schema.entityTypes[name] = parseEntityType(idx.entityTypeNodes[name])
	}
	for _, n := range idx.complexTypeNodes {
		name := attr(n, "Name")
		if _, exists := schema.complexTypes[name]; exists {
			continue
		}
		schema.complexTypes[name] = &ComplexType{Name: name, Properties: parseProperties(n)}
	}

	navByType := make(map[string][]*NavigationProperty)
	for _, name := range idx.entityTypeOrder {
		navByType[name] = resolveNavigationProperties(idx, idx.entityTypeNodes[name])
	}

	for _, n := range doc.FindByTag("EntitySet") {
		set := parseEntitySet(n)
		if _, exists := schema.entitySets[set.Name]; exists {
			continue
		}

		if entityType, ok := schema.entityTypes[set.Type]; ok {
			for _, key := range entityType.Keys {
				set.Keys = append(set.Keys, key)
				if prop, found := entityType.Property(key); found {
					set.KeysType[key] = prop.QualifiedType()
				} else {
					set.KeysType[key] = ""
				}
			}
		}
		for _, nav := range navByType[set.Type] {
			set.addNavigationProperty(nav)
		}

		schema.entitySets[set.Name] = set
		schema.EntitySets = append(schema.EntitySets, set)
	}

	return schema, nil
}

func parseEntityType(n Node) *EntityType {
	et := &EntityType{
		Name:       attr(n, "Name"),
		Properties: parseProperties(n),
	}
	for _, ref := range n.FindByTag("PropertyRef") {
		et.Keys = append(et.Keys, attr(ref, "Name"))
	}
	return et
}

func parseProperties(n Node) []Property {
	var props []Property
	for _, p := range n.FindByTag("Property") {
		schema, typeName := splitQualifiedName(attr(p, "Type"))
		props = append(props, Property{
			Name:      attr(p, "Name"),
			Schema:    schema,
			Type:      typeName,
			Precision: attr(p, "Precision"),
			Scale:     attr(p, "Scale"),
		})
	}
	return props
}

func parseEntitySet(n Node) *EntitySet {
	parts := entitySetTypePattern.FindStringSubmatch(attr(n, "EntityType"))
	return &EntitySet{
		Name:     attr(n, "Name"),
		Schema:   parts[1],
		Type:     parts[2],
		KeysType: make(map[string]string),
		navIndex: make(map[string]*NavigationProperty),
	}
}

// splitQualifiedName splits on the final "." into (namespace, name).
func splitQualifiedName(qualified string) (string, string) {
	i := strings.LastIndex(qualified, ".")
	if i < 0 {
		return "", qualified
	}
	return qualified[:i], qualified[i+1:]
}

func resolveNavigationProperties(idx *index, entityType Node) []*NavigationProperty {
	var navs []*NavigationProperty
	for _, n := range entityType.FindByTag("NavigationProperty") {
		relationship := attr(n, "Relationship")
		parts := strings.Split(relationship, ".")
		associationSet := idx.associationSets[strings.Join(parts, ".")]
		association := idx.associations[parts[len(parts)-1]]

		navs = append(navs, &NavigationProperty{
			Name: attr(n, "Name"),
			From: resolveEndpoint(idx, attr(n, "FromRole"), association, associationSet, true),
			To:   resolveEndpoint(idx, attr(n, "ToRole"), association, associationSet, false),
		})
	}
	return navs
}

func resolveEndpoint(idx *index, role string, association, associationSet Node, from bool) NavigationEndpoint {
	endpoint := NavigationEndpoint{Role: role}

	if associationSet != nil {
		endpoint.EntitySet = attr(first(associationSet.FindByAttributeEquals("End", "Role", role)), "EntitySet")
	}
	if association != nil {
		endpoint.Multiplicity = attr(first(association.FindByAttributeEquals("End", "Role", role)), "Multiplicity")
		if constraint := constraintRole(association, role); constraint != nil {
			endpoint.PropRef = propertyRefs(constraint)
			return endpoint
		}
	}

	// Without a constraint on the association, any Principal or Dependent in the document
	// declaring the role supplies the property references.
	candidates := idx.dependents
	if from {
		candidates = idx.principals
	}
	for _, c := range candidates {
		if attr(c, "Role") == role {
			endpoint.PropRef = propertyRefs(c)
			break
		}
	}
	return endpoint
}

// constraintRole finds the Principal or Dependent element for role inside the association's
// referential constraints.
func constraintRole(association Node, role string) Node {
	for _, constraint := range association.FindByTag("ReferentialConstraint") {
		for _, tag := range []string{"Principal", "Dependent"} {
			if n := first(constraint.FindByAttributeEquals(tag, "Role", role)); n != nil {
				return n
			}
		}
	}
	return nil
}

func propertyRefs(n Node) []string {
	var refs []string
	for _, ref := range n.FindByTag("PropertyRef") {
		refs = append(refs, attr(ref, "Name"))
	}
	return refs
}
