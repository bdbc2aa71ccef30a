package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/forgo/qrmenu/api/internal/database"
	"github.com/forgo/qrmenu/api/internal/model"
)

// MenuCollection is the MongoDB collection holding menus
const MenuCollection = "menus"

type menuItemDocument struct {
	Name        string  `bson:"name"`
	Description string  `bson:"desc"`
	Price       float64 `bson:"price"`
	Dietary     string  `bson:"dietary,omitempty"`
}

type menuDocument struct {
	ID          bson.ObjectID      `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Items       []menuItemDocument `bson:"items"`
	Font        string             `bson:"font"`
	FontColor   string             `bson:"fontColor"`
	Background  string             `bson:"background"`
	CreatedOn   time.Time          `bson:"created_on"`
}

// MongoMenuRepository handles menu data access on MongoDB
type MongoMenuRepository struct {
	coll *mongo.Collection
}

// NewMongoMenuRepository creates a menu repository over a connected MongoDB
func NewMongoMenuRepository(db *database.MongoDB) *MongoMenuRepository {
	return &MongoMenuRepository{coll: db.Collection(MenuCollection)}
}

// Save inserts the menu under a new ObjectID and returns its hex form.
// The insert fails rather than overwrite on a duplicate _id.
func (r *MongoMenuRepository) Save(ctx context.Context, menu *model.Menu) (string, error) {
	doc := toMenuDocument(menu)
	doc.ID = bson.NewObjectID()
	doc.CreatedOn = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: menu %s", database.ErrDuplicate, doc.ID.Hex())
		}
		return "", mongoError(err)
	}

	return doc.ID.Hex(), nil
}

// Fetch retrieves a menu by ObjectID hex.
// Identifiers that are not ObjectIDs report ErrNotFound without a query.
func (r *MongoMenuRepository) Fetch(ctx context.Context, id string) (*model.Menu, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, database.ErrNotFound
	}

	var doc menuDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, mongoError(err)
	}

	return doc.toMenu(), nil
}

func mongoError(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %v", database.ErrConnection, err)
	}
	return fmt.Errorf("%w: %v", database.ErrQuery, err)
}

func toMenuDocument(m *model.Menu) menuDocument {
	items := make([]menuItemDocument, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, menuItemDocument{
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Dietary:     string(item.Dietary),
		})
	}
	return menuDocument{
		Title:       m.Title,
		Description: m.Description,
		Items:       items,
		Font:        string(m.Font),
		FontColor:   string(m.FontColor),
		Background:  string(m.Background),
	}
}

func (d *menuDocument) toMenu() *model.Menu {
	items := make([]model.MenuItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, model.MenuItem{
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Dietary:     model.DietaryTag(item.Dietary),
		})
	}
	created := d.CreatedOn.UTC()
	return &model.Menu{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Items:       items,
		Font:        model.Font(d.Font),
		FontColor:   model.FontColor(d.FontColor),
		Background:  model.Background(d.Background),
		CreatedOn:   &created,
	}
}
