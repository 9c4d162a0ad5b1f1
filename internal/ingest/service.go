package ingest

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/cache"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/lucas-arr/leadgate/internal/observ"
	"github.com/lucas-arr/leadgate/internal/repository"
	"github.com/lucas-arr/leadgate/internal/schema"
	"go.uber.org/zap"
)

// Service drives one webhook delivery through the pipeline: resolve the
// account, snapshot its schema, partition the payload, grow the schema if
// the account allows it, and persist the record+lead pair atomically.
//
// Field-level problems (a value that won't coerce, a name nobody defined)
// never fail the call; only account resolution and persistence do. The
// service does no retries — redelivery is the upstream CRM's job.
type Service struct {
	accounts repository.AccountRepository
	fields   repository.FieldRepository
	records  repository.RecordRepository
	schemas  *cache.SchemaCache
	metrics  *observ.Metrics
	excluded map[string]struct{}
	logger   *zap.Logger
}

func NewService(
	accounts repository.AccountRepository,
	fields repository.FieldRepository,
	records repository.RecordRepository,
	schemas *cache.SchemaCache,
	metrics *observ.Metrics,
	excludedFields []string,
	logger *zap.Logger,
) *Service {
	excluded := make(map[string]struct{}, len(excludedFields))
	for _, name := range excludedFields {
		excluded[name] = struct{}{}
	}
	return &Service{
		accounts: accounts,
		fields:   fields,
		records:  records,
		schemas:  schemas,
		metrics:  metrics,
		excluded: excluded,
		logger:   logger,
	}
}

// Result summarizes what one ingest call did.
type Result struct {
	RecordID          uuid.UUID `json:"record_id"`
	LeadID            uuid.UUID `json:"lead_id"`
	UnknownFields     []string  `json:"unknown_fields"`
	AutoCreateEnabled bool      `json:"auto_create_enabled"`
	FieldsCreated     []string  `json:"fields_created"`
}

// Ingest processes one delivery. Returns ErrAccountNotFound for an
// unknown or inactive api_key; any other error is a persistence failure.
func (s *Service) Ingest(ctx context.Context, apiKey string, payload map[string]any, sourceIP string) (*Result, error) {
	account, err := s.accounts.GetActiveByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	// Schema snapshot. May be stale relative to concurrent admin edits;
	// a definition added after this point applies to the next call.
	defs, err := s.loadSchema(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	index := schema.DefinitionIndex(defs)

	res := schema.Resolve(index, payload, s.excluded)

	created := make([]string, 0)
	if account.AutoCreateFields && len(res.Unknown) > 0 {
		created, err = s.autoCreate(ctx, account.ID, payload, index, &res)
		if err != nil {
			return nil, err
		}
	} else if len(res.Unknown) > 0 {
		s.logger.Warn("unknown fields in payload",
			zap.String("account_id", account.ID.String()),
			zap.Strings("unknown_fields", res.Unknown),
		)
	}

	meta := models.RecordMetadata{
		SourceIP:      sourceIP,
		UnknownFields: res.Unknown,
	}
	rec, lead, err := s.records.CreateWithLead(ctx, account.ID, payload, meta, res.KnownData())
	if err != nil {
		return nil, fmt.Errorf("persist record and lead: %w", err)
	}

	s.logger.Info("ingest complete",
		zap.String("account_id", account.ID.String()),
		zap.String("record_id", rec.ID.String()),
		zap.String("lead_id", lead.ID.String()),
		zap.Int("known_fields", len(res.Known)),
		zap.Int("unknown_fields", len(res.Unknown)),
		zap.Int("fields_created", len(created)),
	)

	return &Result{
		RecordID:          rec.ID,
		LeadID:            lead.ID,
		UnknownFields:     res.Unknown,
		AutoCreateEnabled: account.AutoCreateFields,
		FieldsCreated:     created,
	}, nil
}

func (s *Service) loadSchema(ctx context.Context, accountID uuid.UUID) ([]models.FieldDefinition, error) {
	if defs, ok := s.schemas.Get(ctx, accountID); ok {
		return defs, nil
	}
	defs, err := s.fields.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	s.schemas.Set(ctx, accountID, defs)
	return defs, nil
}

// autoCreate ensures a definition exists for each unknown field and
// re-resolves just those keys so a field created for this payload applies
// to this payload, not only future ones.
//
// CreateIfAbsent absorbs the concurrent-creation race: when two calls
// introduce the same name at once, one creates and the rest adopt the
// winner's definition. Creations commit independently of the record+lead
// transaction — if that write later fails, the definitions stay, which is
// harmless (nothing references them yet) and lets the CRM's retry of the
// same delivery reuse them.
func (s *Service) autoCreate(ctx context.Context, accountID uuid.UUID, payload map[string]any, index map[string]models.FieldDefinition, res *schema.Resolution) ([]string, error) {
	created := make([]string, 0, len(res.Unknown))
	stillUnknown := make([]string, 0)

	for _, name := range res.Unknown {
		sample := payload[name]
		def, ok := index[name]
		if !ok {
			inferred := schema.InferType(name, sample)
			stored, didCreate, err := s.fields.CreateIfAbsent(ctx, accountID, name, inferred, "", false)
			if err != nil {
				return nil, fmt.Errorf("auto-create field %q: %w", name, err)
			}
			def = *stored
			index[name] = def
			if didCreate {
				created = append(created, name)
				if s.metrics != nil {
					s.metrics.FieldsAutoCreated.Inc()
				}
				s.logger.Info("auto-created field",
					zap.String("account_id", accountID.String()),
					zap.String("field_name", name),
					zap.String("data_type", string(def.DataType)),
				)
			}
		}
		// A name can be unknown with a definition already in the index:
		// its value failed coercion. Coerce again against whatever
		// definition now exists — a racing call may have created the
		// field with a different inferred type than ours.
		value, err := schema.Coerce(sample, def.DataType)
		if err != nil {
			stillUnknown = append(stillUnknown, name)
			continue
		}
		res.Known[name] = value
	}

	sort.Strings(stillUnknown)
	res.Unknown = stillUnknown

	if len(created) > 0 {
		s.schemas.Invalidate(ctx, accountID)
	}
	sort.Strings(created)
	return created, nil
}
