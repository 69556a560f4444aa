package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vendhub/vending-machine/internal/core/domain"
)

const collectionProductEvents = "product_events"

type ProductEventRepository struct {
	col *mongo.Collection
}

func NewProductEventRepository(db *mongo.Database) *ProductEventRepository {
	return &ProductEventRepository{col: db.Collection(collectionProductEvents)}
}

type productEventDoc struct {
	ID              string    `bson:"_id"`
	ProductID       string    `bson:"product_id"`
	EventType       string    `bson:"event_type"`
	Quantity        int       `bson:"quantity"`
	UnitPriceCents  int       `bson:"unit_price_cents"`
	TotalValueCents int       `bson:"total_value_cents"`
	CreatedBy       string    `bson:"created_by"`
	CreatedAt       time.Time `bson:"created_at"`
	Description     string    `bson:"description"`
	PurchaseOrderID string    `bson:"purchase_order_id,omitempty"`
}

// Save appends one audit record. Records are insert-only.
func (r *ProductEventRepository) Save(ctx context.Context, event *domain.ProductEvent) error {
	doc := productEventDoc{
		ID:              event.ID().String(),
		ProductID:       event.ProductID().String(),
		EventType:       string(event.EventType()),
		Quantity:        event.Quantity(),
		UnitPriceCents:  event.UnitPrice().Cents(),
		TotalValueCents: event.TotalValue().Cents(),
		CreatedBy:       event.CreatedBy().String(),
		CreatedAt:       event.CreatedAt(),
		Description:     event.Description(),
	}
	if meta, ok := event.Metadata().(domain.WithdrawMetadata); ok {
		doc.PurchaseOrderID = meta.PurchaseOrderID
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("save product event: %w", err)
	}
	return nil
}

func (r *ProductEventRepository) FindByProductID(ctx context.Context, productID domain.ProductID) ([]*domain.ProductEvent, error) {
	return r.findMany(ctx, bson.M{"product_id": productID.String()}, 0)
}

func (r *ProductEventRepository) FindByProductIDAndType(ctx context.Context, productID domain.ProductID, eventType domain.ProductEventType) ([]*domain.ProductEvent, error) {
	filter := bson.M{"product_id": productID.String(), "event_type": string(eventType)}
	return r.findMany(ctx, filter, 0)
}

func (r *ProductEventRepository) FindByCreatedBy(ctx context.Context, userID domain.UserID) ([]*domain.ProductEvent, error) {
	return r.findMany(ctx, bson.M{"created_by": userID.String()}, 0)
}

func (r *ProductEventRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*domain.ProductEvent, error) {
	filter := bson.M{"created_at": bson.M{"$gte": from, "$lte": to}}
	return r.findMany(ctx, filter, 0)
}

// AuditTrail returns the most recent records for a product, newest first.
func (r *ProductEventRepository) AuditTrail(ctx context.Context, productID domain.ProductID, limit int) ([]*domain.ProductEvent, error) {
	return r.findMany(ctx, bson.M{"product_id": productID.String()}, limit)
}

func (r *ProductEventRepository) findMany(ctx context.Context, filter bson.M, limit int) ([]*domain.ProductEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find product events: %w", err)
	}
	defer cur.Close(ctx)

	var events []*domain.ProductEvent
	for cur.Next(ctx) {
		var doc productEventDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product event: %w", err)
		}
		event, err := toProductEvent(doc)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, cur.Err()
}

// EnsureIndexes creates the audit-trail query indexes.
func (r *ProductEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "event_type", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func toProductEvent(doc productEventDoc) (*domain.ProductEvent, error) {
	id, err := domain.ParseProductEventID(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("stored event id: %w", err)
	}
	productID, err := domain.ParseProductID(doc.ProductID)
	if err != nil {
		return nil, fmt.Errorf("stored event product id: %w", err)
	}
	eventType, err := domain.ParseProductEventType(doc.EventType)
	if err != nil {
		return nil, fmt.Errorf("stored event type: %w", err)
	}
	createdBy, err := domain.ParseUserID(doc.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("stored event creator: %w", err)
	}
	unitPrice, err := domain.NewMoney(doc.UnitPriceCents)
	if err != nil {
		return nil, fmt.Errorf("stored unit price: %w", err)
	}
	totalValue, err := domain.NewMoney(doc.TotalValueCents)
	if err != nil {
		return nil, fmt.Errorf("stored total value: %w", err)
	}

	var metadata domain.EventMetadata = domain.TopUpMetadata{}
	if eventType == domain.EventWithdraw {
		metadata = domain.WithdrawMetadata{PurchaseOrderID: doc.PurchaseOrderID}
	}

	return domain.RehydrateProductEvent(id, productID, eventType, doc.Quantity, unitPrice, totalValue, createdBy, doc.CreatedAt, doc.Description, metadata), nil
}
