package mongo

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/id"
)

func TestAssignmentModelLiveMarker(t *testing.T) {
	a := &assignment.Assignment{
		ID:     id.NewAssignmentID(),
		UserID: id.NewAccountID(),
		RoleID: id.NewRoleID(),
	}
	if m := assignmentToModel(a); !m.Live {
		t.Fatal("live assignment must carry the live marker")
	}

	deleted := time.Now()
	a.DeletedAt = &deleted
	if m := assignmentToModel(a); m.Live {
		t.Fatal("soft-deleted assignment must not carry the live marker")
	}
}

func TestAssignmentPairIndexUniqueOverLiveRows(t *testing.T) {
	models := migrationIndexes()[colAssignments]
	var pair *mongod.IndexModel
	for i := range models {
		keys, ok := models[i].Keys.(bson.D)
		if ok && len(keys) == 2 && keys[0].Key == "user_id" && keys[1].Key == "role_id" {
			pair = &models[i]
			break
		}
	}
	if pair == nil {
		t.Fatal("no (user_id, role_id) index defined for assignments")
	}
	if pair.Options == nil {
		t.Fatal("pair index has no options")
	}
	var opts options.IndexOptions
	for _, set := range pair.Options.Opts {
		if err := set(&opts); err != nil {
			t.Fatal(err)
		}
	}
	if opts.Unique == nil || !*opts.Unique {
		t.Fatal("pair index must be unique")
	}
	pf, ok := opts.PartialFilterExpression.(bson.M)
	if !ok {
		t.Fatalf("unexpected partial filter type %T", opts.PartialFilterExpression)
	}
	if live, _ := pf["live"].(bool); !live {
		t.Fatal("pair index must be scoped to live rows")
	}
}

func TestIsDuplicateKey(t *testing.T) {
	dup := mongod.WriteException{WriteErrors: mongod.WriteErrors{{Code: 11000}}}
	if !isDuplicateKey(dup) {
		t.Fatal("E11000 write error not recognized")
	}
	if !isDuplicateKey(fmt.Errorf("steward: create assignment: %w", dup)) {
		t.Fatal("wrapped E11000 write error not recognized")
	}
	if isDuplicateKey(mongod.WriteException{WriteErrors: mongod.WriteErrors{{Code: 121}}}) {
		t.Fatal("validation failure wrongly recognized")
	}
	if isDuplicateKey(errors.New("connection reset")) {
		t.Fatal("plain error wrongly recognized")
	}
}
