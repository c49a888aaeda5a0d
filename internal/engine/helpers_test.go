package engine

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"bibliograph/internal/graph"
	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

func newTestLogger(t *testing.T) (*logrus.Logger, *warn.Collector) {
	t.Helper()
	log, _ := test.NewNullLogger()
	return log, warn.NewCollector(log)
}

// addExpression registers an expression with its creation event, linked
// both ways.
func addExpression(g *graph.Store, suffix string) string {
	id := "F2_" + suffix
	g.AddEntity(&types.Entity{ID: id, Kind: types.KindExpression, Label: suffix, OrderKey: float64(g.EntityCount()), HasOrder: true})
	creation := "F28_" + suffix
	g.AddEntity(&types.Entity{ID: creation, Kind: types.KindExpressionCreation})
	g.AddRelationPair(creation, types.RelCreated, id)
	return id
}

func addComponent(g *graph.Store, parent, child string) {
	g.AddRelationPair(parent, types.RelHasComponent, child)
}
