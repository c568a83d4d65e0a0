package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"carenest/config"
	"carenest/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a direct id or email lookup matches nothing.
// Malformed ObjectID hex counts as not found, not as a server error.
var ErrNotFound = errors.New("document not found")

// Store owns the MongoDB client and the three collections. The connection is
// established lazily by EnsureReady on the first operation and reused for the
// lifetime of the process; there is no explicit teardown.
type Store struct {
	mu    sync.Mutex
	ready bool

	cfg *config.Config
	log *logrus.Logger

	client   *mongo.Client
	services *mongo.Collection
	users    *mongo.Collection
	bookings *mongo.Collection
}

func NewStore(cfg *config.Config, log *logrus.Logger) *Store {
	return &Store{cfg: cfg, log: log}
}

// EnsureReady is idempotent: the first successful call connects, selects the
// database and seeds the service catalog if it is empty; later calls are
// no-ops. A failed connect is retried on the next call rather than latched.
func (s *Store) EnsureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("mongo ping: %w", err)
	}

	database := client.Database(s.cfg.DBName)
	s.client = client
	s.services = database.Collection("services")
	s.users = database.Collection("users")
	s.bookings = database.Collection("bookings")

	if err := s.seedCatalog(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}

	s.ready = true
	s.log.WithField("db", s.cfg.DBName).Info("mongo connection established")
	return nil
}

// SeedServices returns the catalog entries inserted when the services
// collection is empty: one service per category, with fixed rates.
func SeedServices() []models.Service {
	now := time.Now()
	return []models.Service{
		{
			Title:         "Baby Care",
			Description:   "Trained caregivers who look after infants and toddlers at your home.",
			Image:         "https://i.ibb.co/1JyKjPq/baby-care.jpg",
			ChargePerHour: 300,
			ChargePerDay:  2000,
			Features:      []string{"Feeding and nap routines", "Playtime and early learning", "Hygiene and diaper care"},
			Category:      "baby-care",
			CreatedAt:     now,
		},
		{
			Title:         "Elderly Care",
			Description:   "Companions for senior family members, from daily errands to mobility support.",
			Image:         "https://i.ibb.co/0mX7hYv/elderly-care.jpg",
			ChargePerHour: 250,
			ChargePerDay:  1800,
			Features:      []string{"Medication reminders", "Mobility and walking support", "Companionship and meals"},
			Category:      "elderly",
			CreatedAt:     now,
		},
		{
			Title:         "Patient Care",
			Description:   "Home attendants for sick family members recovering from illness or surgery.",
			Image:         "https://i.ibb.co/Wc4q9nK/patient-care.jpg",
			ChargePerHour: 350,
			ChargePerDay:  2500,
			Features:      []string{"Vitals monitoring", "Wound dressing assistance", "Doctor visit coordination"},
			Category:      "sick-people",
			CreatedAt:     now,
		},
	}
}

func (s *Store) seedCatalog(ctx context.Context) error {
	count, err := s.services.EstimatedDocumentCount(ctx)
	if err != nil {
		return fmt.Errorf("count services: %w", err)
	}
	if count > 0 {
		return nil
	}

	seeds := SeedServices()
	docs := make([]interface{}, len(seeds))
	for i, svc := range seeds {
		docs[i] = svc
	}
	if _, err := s.services.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed services: %w", err)
	}
	s.log.WithField("count", len(seeds)).Info("seeded service catalog")
	return nil
}

// ---------- Services ----------

func (s *Store) ListServices(ctx context.Context, createdBy string) ([]models.Service, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	filter := bson.M{}
	if createdBy != "" {
		filter["createdBy"] = createdBy
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.services.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var services []models.Service
	if err := cur.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *Store) GetService(ctx context.Context, id string) (*models.Service, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var svc models.Service
	if err := s.services.FindOne(ctx, bson.M{"_id": oid}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (s *Store) CreateService(ctx context.Context, svc models.Service) (string, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return "", err
	}
	res, err := s.services.InsertOne(ctx, svc)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// UpdateService applies a partial field set; the caller strips identity
// fields from the payload. No schema validation is performed.
func (s *Store) UpdateService(ctx context.Context, id string, fields bson.M) (int64, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return 0, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNotFound
	}
	if len(fields) == 0 {
		return 0, nil
	}
	res, err := s.services.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (s *Store) DeleteService(ctx context.Context, id string) (int64, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return 0, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := s.services.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ---------- Users ----------

// CreateUser inserts a user document unless one already exists for the
// email. The stored role is always "user"; promotion goes through
// UpdateUserRole. Returns false without modification when the email is taken.
func (s *Store) CreateUser(ctx context.Context, email string, fields bson.M) (bool, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return false, err
	}
	err := s.users.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}

	doc := bson.M{}
	for k, v := range fields {
		doc[k] = v
	}
	doc["email"] = email
	doc["role"] = models.RoleUser
	doc["createdAt"] = time.Now()
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GetUser(ctx context.Context, email string) (bson.M, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	var doc bson.M
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// UpsertUser merges the given fields into the user keyed by email, creating
// the document when absent. Fields not in the payload are left untouched.
func (s *Store) UpsertUser(ctx context.Context, email string, fields bson.M) error {
	if err := s.EnsureReady(ctx); err != nil {
		return err
	}
	update := bson.M{"$setOnInsert": bson.M{"createdAt": time.Now()}}
	if len(fields) > 0 {
		update["$set"] = fields
	}
	_, err := s.users.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	return err
}

func (s *Store) ListAllUsers(ctx context.Context) ([]bson.M, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var users []bson.M
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserRole(ctx context.Context, email, role string) (int64, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return 0, err
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// ---------- Bookings ----------

func (s *Store) CreateBooking(ctx context.Context, b models.Booking) (string, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return "", err
	}
	res, err := s.bookings.InsertOne(ctx, b)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *Store) ListBookingsByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.bookings.Find(ctx, bson.M{"userEmail": email}, opts)
	if err != nil {
		return nil, err
	}
	var bookings []models.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *Store) ListAllBookings(ctx context.Context, status string) ([]models.Booking, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.bookings.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var bookings []models.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var b models.Booking
	if err := s.bookings.FindOne(ctx, bson.M{"_id": oid}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateBookingStatus replaces only the status field. The value is not
// checked against an allowed set; the status enum is open.
func (s *Store) UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	res := s.bookings.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Booking
	if err := res.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteBooking(ctx context.Context, id string) (int64, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return 0, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := s.bookings.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ---------- Admin reporting ----------

// revenuePipeline sums totalCost over every booking whose status is not
// Cancelled. Cancelled bookings earn nothing and must not inflate revenue.
func revenuePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": models.StatusCancelled}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalCost"}}}},
	}
}

// statusCountPipeline groups bookings by status, cancelled ones included.
func statusCountPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
}

// Stats aggregates collection counts, revenue over non-cancelled bookings,
// and per-status booking counts.
func (s *Store) Stats(ctx context.Context) (*models.AdminStats, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	stats := &models.AdminStats{StatusCounts: map[string]int64{}}

	var err error
	if stats.TotalBookings, err = s.bookings.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = s.users.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if stats.TotalServices, err = s.services.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}

	cur, err := s.bookings.Aggregate(ctx, revenuePipeline())
	if err != nil {
		return nil, err
	}
	var revenue []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &revenue); err != nil {
		return nil, err
	}
	if len(revenue) > 0 {
		stats.TotalRevenue = revenue[0].Total
	}

	cur, err = s.bookings.Aggregate(ctx, statusCountPipeline())
	if err != nil {
		return nil, err
	}
	var counts []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.StatusCounts[c.Status] = c.Count
	}

	return stats, nil
}
