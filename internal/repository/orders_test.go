package repository

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestOrderFilterStatus(t *testing.T) {
	open := orderFilter(OrderQuery{Filter: FilterOpen})
	status, ok := open["status"].(bson.M)
	if !ok || status["$nin"] == nil {
		t.Fatalf("expected $nin on status, got %+v", open)
	}

	closed := orderFilter(OrderQuery{Filter: FilterClosed})
	status, ok = closed["status"].(bson.M)
	if !ok || status["$in"] == nil {
		t.Fatalf("expected $in on status, got %+v", closed)
	}

	if all := orderFilter(OrderQuery{}); len(all) != 0 {
		t.Fatalf("expected empty filter, got %+v", all)
	}
}

func TestOrderFilterSearch(t *testing.T) {
	f := orderFilter(OrderQuery{Search: "açaí (p)"})
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("expected 3 text clauses, got %+v", f["$or"])
	}
	name := or[0].(bson.M)["itens.name"].(bson.M)
	if name["$regex"] != `açaí \(p\)` {
		t.Fatalf("expected escaped pattern, got %v", name["$regex"])
	}

	f = orderFilter(OrderQuery{Filter: FilterOpen, Search: "#12"})
	or = f["$or"].(bson.A)
	if len(or) != 4 {
		t.Fatalf("expected number clause, got %+v", or)
	}
	if or[3].(bson.M)["pedidoNumber"] != int64(12) {
		t.Fatalf("unexpected number clause %+v", or[3])
	}
	if f["status"] == nil {
		t.Fatal("status filter must be kept with a search")
	}
}
