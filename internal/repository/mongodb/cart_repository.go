package mongodb

import (
	"context"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartDocument struct {
	OwnerID        string         `bson:"owner_id"`
	Lines          []lineDocument `bson:"lines"`
	Version        int64          `bson:"version"`
	LastMergeToken string         `bson:"last_merge_token,omitempty"`
	CreatedAt      time.Time      `bson:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at"`
}

type lineDocument struct {
	LineID    string               `bson:"line_id"`
	ProductID string               `bson:"product_id"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
}

const cartsCollection = "carts"

type cartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) repository.CartRepository {
	return &cartRepository{
		collection: db.Collection(cartsCollection),
	}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	var doc cartDocument
	err := r.collection.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrCartNotFound
		}
		return nil, errors.Wrap(err, "get cart")
	}
	return fromDocument(doc)
}

func (r *cartRepository) SaveCart(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}

	doc, err := toDocument(cart)
	if err != nil {
		return err
	}
	doc.Version = cart.Version + 1
	doc.UpdatedAt = now

	if cart.Version == 0 {
		if _, err := r.collection.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return repository.ErrVersionConflict
			}
			return errors.Wrap(err, "insert cart")
		}
	} else {
		filter := bson.M{"owner_id": cart.OwnerID, "version": cart.Version}
		result, err := r.collection.ReplaceOne(ctx, filter, doc)
		if err != nil {
			return errors.Wrap(err, "replace cart")
		}
		if result.MatchedCount == 0 {
			return repository.ErrVersionConflict
		}
	}

	cart.Version = doc.Version
	cart.UpdatedAt = now
	return nil
}

// CreateIndexes enforces one cart per owner, which also makes concurrent
// first inserts collide.
func CreateIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(cartsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "create cart indexes")
	}
	return nil
}

func toDocument(cart *domain.Cart) (cartDocument, error) {
	lines := make([]lineDocument, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		price, err := primitive.ParseDecimal128(l.UnitPrice.String())
		if err != nil {
			return cartDocument{}, errors.Wrapf(err, "encode price of line %s", l.LineID)
		}
		lines = append(lines, lineDocument{
			LineID:    l.LineID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: price,
		})
	}
	return cartDocument{
		OwnerID:        cart.OwnerID,
		Lines:          lines,
		Version:        cart.Version,
		LastMergeToken: cart.LastMergeToken,
		CreatedAt:      cart.CreatedAt,
		UpdatedAt:      cart.UpdatedAt,
	}, nil
}

func fromDocument(doc cartDocument) (*domain.Cart, error) {
	lines := make([]domain.CartLine, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		price, err := decimal.NewFromString(l.UnitPrice.String())
		if err != nil {
			return nil, errors.Wrapf(err, "decode price of line %s", l.LineID)
		}
		lines = append(lines, domain.CartLine{
			LineID:    l.LineID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: price,
		})
	}
	return &domain.Cart{
		OwnerID:        doc.OwnerID,
		Lines:          lines,
		Version:        doc.Version,
		LastMergeToken: doc.LastMergeToken,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}
