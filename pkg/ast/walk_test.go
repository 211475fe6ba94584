package ast

import "testing"

func sampleProgram() *Module {
	return Prog("sample",
		Const("foo", Int(5)),
		Define("bar", []string{"x"},
			Declare("y", Mul(ID("x"), ID("x"))),
			Declare("bar", Add(ID("y"), Int(1))),
		),
	)
}

func TestWalkVisitsParentsBeforeChildren(t *testing.T) {
	var order []NodeType
	Walk(Declare("x", Add(Int(1), Int(2))), func(n Node) bool {
		order = append(order, n.NodeType())
		return true
	})
	want := []NodeType{NodeDeclaration, NodeIdentifier, NodeBinaryExpression, NodeIntegerLiteral, NodeIntegerLiteral}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestWalkSkipsChildrenWhenVisitReturnsFalse(t *testing.T) {
	count := 0
	Walk(sampleProgram(), func(n Node) bool {
		count++
		return n.NodeType() != NodeDefinition
	})
	if count != 3 {
		t.Fatalf("expected module plus two definitions, visited %d nodes", count)
	}
}

func TestWalkToleratesNilChildren(t *testing.T) {
	count := 0
	Walk(NewAssignment(nil, nil), func(Node) bool {
		count++
		return true
	})
	if count != 1 {
		t.Fatalf("expected only the assignment to be visited, got %d", count)
	}
}

func TestAnnotateOriginsKeepsExistingEntries(t *testing.T) {
	mod := sampleProgram()
	first := mod.Definitions[0]
	table := map[Node]string{first: "other.yml"}
	table = AnnotateOrigins(mod, "main.yml", table)
	if table[first] != "other.yml" {
		t.Fatalf("existing origin overwritten: %q", table[first])
	}
	if table[mod.Definitions[1]] != "main.yml" {
		t.Fatalf("expected main.yml origin, got %q", table[mod.Definitions[1]])
	}
	if table[mod] != "main.yml" {
		t.Fatalf("expected module origin recorded")
	}
}

func TestAnnotateOriginsIgnoresEmptyPath(t *testing.T) {
	table := AnnotateOrigins(sampleProgram(), "", nil)
	if len(table) != 0 {
		t.Fatalf("expected empty table, got %d entries", len(table))
	}
}

func TestSetSpan(t *testing.T) {
	id := ID("x")
	if !id.Span().IsZero() {
		t.Fatalf("expected zero span on fresh node")
	}
	span := Span{Start: Position{Line: 3, Column: 5}, End: Position{Line: 3, Column: 6}}
	SetSpan(id, span)
	if id.Span() != span {
		t.Fatalf("expected %+v, got %+v", span, id.Span())
	}
	var nilID *Identifier
	SetSpan(nilID, span)
}
