package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vendhub/vending-machine/internal/core/domain"
)

const collectionProducts = "products"

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type productDoc struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	CostCents       int       `bson:"cost_cents"`
	AmountAvailable int       `bson:"amount_available"`
	SellerID        string    `bson:"seller_id"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// Save inserts or replaces the product document keyed by id.
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	doc := productDoc{
		ID:              product.ID().String(),
		Name:            product.Name(),
		CostCents:       product.Cost().Cents(),
		AmountAvailable: product.AmountAvailable(),
		SellerID:        product.SellerID().String(),
		CreatedAt:       product.CreatedAt(),
		UpdatedAt:       product.UpdatedAt(),
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProductExists
		}
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return toProduct(doc)
}

func (r *ProductRepository) FindBySellerIDAndName(ctx context.Context, sellerID domain.UserID, name string) (*domain.Product, error) {
	var doc productDoc
	filter := bson.M{"seller_id": sellerID.String(), "name": name}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product by seller and name: %w", err)
	}
	return toProduct(doc)
}

func (r *ProductRepository) FindBySellerID(ctx context.Context, sellerID domain.UserID) ([]*domain.Product, error) {
	return r.findMany(ctx, bson.M{"seller_id": sellerID.String()})
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return r.findMany(ctx, bson.M{})
}

func (r *ProductRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.Product, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	var products []*domain.Product
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		product, err := toProduct(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, cur.Err()
}

func (r *ProductRepository) Delete(ctx context.Context, id domain.ProductID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// EnsureIndexes creates the per-seller unique name index.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "seller_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "seller_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func toProduct(doc productDoc) (*domain.Product, error) {
	id, err := domain.ParseProductID(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("stored product id: %w", err)
	}
	sellerID, err := domain.ParseUserID(doc.SellerID)
	if err != nil {
		return nil, fmt.Errorf("stored seller id: %w", err)
	}
	cost, err := domain.NewMoney(doc.CostCents)
	if err != nil {
		return nil, fmt.Errorf("stored cost: %w", err)
	}
	return domain.RehydrateProduct(id, doc.Name, cost, doc.AmountAvailable, sellerID, doc.CreatedAt, doc.UpdatedAt), nil
}
