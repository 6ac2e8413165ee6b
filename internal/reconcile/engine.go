package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/keith-mcqueen/Temples/internal/infrastructure/monitoring"
	"github.com/keith-mcqueen/Temples/internal/logging"
	"github.com/keith-mcqueen/Temples/internal/record"
	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

// Field names with merge semantics.
const (
	NameField   = "name"
	ImagesField = "images"
)

// Outcome is the result of an upsert.
type Outcome int

const (
	// Discarded means the key was unknown and creation was not allowed.
	Discarded Outcome = iota
	// Created means a new entity was stored.
	Created
	// Merged means the candidate was merged into an existing entity.
	Merged
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Merged:
		return "merged"
	default:
		return "discarded"
	}
}

// Engine merges candidate records from several sources into a Store.
type Engine struct {
	store   *Store
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewEngine creates an engine over store. A nil store starts empty.
func NewEngine(store *Store, log *logging.Logger, metrics *monitoring.Metrics) *Engine {
	if store == nil {
		store = NewStore()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Engine{store: store, log: log.Named("reconcile"), metrics: metrics}
}

// Store returns the canonical store.
func (e *Engine) Store() *Store {
	return e.store
}

// Upsert stores candidate under its normalized name, or merges it into the
// entity already there. The candidate's name is normalized in place. With
// allowCreate false an unknown key is logged and the candidate discarded.
func (e *Engine) Upsert(source string, candidate *record.Record, allowCreate bool) (Outcome, error) {
	key, err := normalizeCandidate(candidate)
	if err != nil {
		return Discarded, err
	}

	existing, found := e.store.Lookup(key)
	if !found {
		if !allowCreate {
			e.log.Info("not found", zap.String("name", key), zap.String("source", source))
			e.record(source, Discarded)
			return Discarded, nil
		}
		e.log.Info("adding", zap.String("name", key), zap.String("source", source))
		e.store.insert(key, candidate.Clone())
		e.record(source, Created)
		return Created, nil
	}

	merge(existing, candidate)
	e.record(source, Merged)
	return Merged, nil
}

// Enrich merges patch into the entity stored under key even when the patch
// carries a different display name. A display name in the patch is
// normalized but the entity keeps its key.
func (e *Engine) Enrich(key string, patch *record.Record) error {
	existing, found := e.store.Lookup(key)
	if !found {
		return errors.NewNotFoundError("entity", key)
	}
	if name, ok := patch.String(NameField); ok {
		patch.Set(NameField, NormalizeName(name))
	}
	merge(existing, patch)
	return nil
}

func (e *Engine) record(source string, o Outcome) {
	e.metrics.RecordUpsert(source, o.String())
	e.metrics.SetEntities(e.store.Len())
}

func normalizeCandidate(candidate *record.Record) (string, error) {
	v, err := candidate.Require(NameField)
	if err != nil {
		return "", err
	}
	name, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("candidate name is %T, not a string", v)
	}
	key := NormalizeName(name)
	candidate.Set(NameField, key)
	return key, nil
}

// merge overwrites existing with every field of candidate except images,
// which are concatenated. The images field is only written when either side
// carries images.
func merge(existing, candidate *record.Record) {
	_, hadImages := existing.Get(ImagesField)
	_, hasImages := candidate.Get(ImagesField)

	var images []any
	if hadImages || hasImages {
		old := existing.List(ImagesField)
		add := candidate.List(ImagesField)
		images = make([]any, 0, len(old)+len(add))
		images = append(images, old...)
		images = append(images, add...)
	}

	existing.Update(candidate)

	if hadImages || hasImages {
		existing.Set(ImagesField, images)
	}
}
