package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/extraction"
	"github.com/ersonp/lore-state/internal/domain/ports"
)

var (
	// ErrInvalidGameID is returned for a game ID that is not positive.
	ErrInvalidGameID = errors.New("invalid game id")
	// ErrInvalidTurn is returned for a negative turn.
	ErrInvalidTurn = errors.New("invalid turn")
	// ErrInvalidSegmentID is returned for a segment ID that is not positive.
	ErrInvalidSegmentID = errors.New("invalid segment id")
)

// RelationshipScanner finds relationships in free text such as generator
// descriptions, keeping pronoun sources.
type RelationshipScanner interface {
	Relationships(text string) []entities.Relationship
}

// SegmentResult lists the entities a call created or updated.
type SegmentResult struct {
	Items      []*entities.Item
	Characters []*entities.Character
	Extracted  *entities.Extraction
}

// SegmentService resolves narrative segments and generator declarations
// against a game's roster and commits the outcome atomically.
type SegmentService struct {
	store     ports.WorldStore
	extractor ports.Extractor
	scanner   RelationshipScanner
	lifecycle *Lifecycle
	matcher   *Matcher
	locks     *GameLocks
	logger    *zap.Logger
}

// NewSegmentService creates a new segment service. A nil scanner uses the
// regex strategy's templates; a nil logger discards logs.
func NewSegmentService(store ports.WorldStore, extractor ports.Extractor, scanner RelationshipScanner, lifecycle *Lifecycle, logger *zap.Logger) *SegmentService {
	if scanner == nil {
		scanner = extraction.NewRegex(nil)
	}
	if lifecycle == nil {
		lifecycle = NewLifecycle(nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SegmentService{
		store:     store,
		extractor: extractor,
		scanner:   scanner,
		lifecycle: lifecycle,
		matcher:   lifecycle.Matcher(),
		locks:     NewGameLocks(),
		logger:    logger,
	}
}

// ProcessSegment extracts mentions from one narrative segment, resolves them
// against the game's roster and commits all changes in one transaction.
// On error the roster is left exactly as it was.
func (s *SegmentService) ProcessSegment(ctx context.Context, gameID int64, segment entities.Segment, turn int) (*SegmentResult, error) {
	if err := validateTarget(gameID, turn); err != nil {
		return nil, err
	}
	if segment.ID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSegmentID, segment.ID)
	}

	unlock, err := s.locks.Lock(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("waiting for game %d: %w", gameID, err)
	}
	defer unlock()

	extracted, err := s.extractor.Extract(ctx, segment.Content)
	if err != nil {
		return nil, fmt.Errorf("extracting segment %d: %w", segment.ID, err)
	}
	if len(extracted.Items) == 0 && len(extracted.Characters) == 0 && len(extracted.Relationships) == 0 {
		return emptyResult(extracted), nil
	}

	items, characters, err := s.loadRoster(ctx, gameID)
	if err != nil {
		return nil, err
	}

	charKeys := characterKeys(characters)
	for _, name := range extracted.Characters {
		addKey(charKeys, name)
	}
	for _, rel := range extracted.Relationships {
		if rel.Type == entities.RelationIdentity {
			addKey(charKeys, rel.Source)
			addKey(charKeys, rel.Target)
		}
	}

	ir := s.newItemResolver(gameID, turn, segment.Content, items, charKeys)
	cr := s.newCharacterResolver(gameID, turn, segment.Content, characters)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ir.resolveExtraction(extracted)
		return gctx.Err()
	})
	g.Go(func() error {
		cr.resolveExtraction(extracted)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolving segment %d: %w", segment.ID, err)
	}

	if err := s.commit(ctx, gameID, segment.ID, ir, cr); err != nil {
		return nil, err
	}

	s.logger.Info("segment processed",
		zap.Int64("game_id", gameID),
		zap.Int64("segment_id", segment.ID),
		zap.Int("turn", turn),
		zap.String("strategy", extracted.Strategy),
		zap.Int("items_created", len(ir.created)),
		zap.Int("items_updated", len(ir.touched)),
		zap.Int("characters_created", len(cr.created)),
		zap.Int("characters_updated", len(cr.touched)),
		zap.Int("mentions", len(ir.mentions)+len(cr.mentions)))

	return &SegmentResult{
		Items:      ir.results(),
		Characters: cr.results(),
		Extracted:  extracted,
	}, nil
}

// ProcessGeneratorOutput ingests the generator's declared items and characters
// through the same match, create and update path as narrative mentions.
// Explicit ITEM_UPDATE and CHARACTER_UPDATE tags in descriptions take
// precedence over relationships found by the fallback templates. Mentions
// are only recorded when out.SegmentID is set.
func (s *SegmentService) ProcessGeneratorOutput(ctx context.Context, gameID int64, out entities.GeneratorOutput, turn int) (*SegmentResult, error) {
	if err := validateTarget(gameID, turn); err != nil {
		return nil, err
	}
	if out.SegmentID < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSegmentID, out.SegmentID)
	}
	if out.IsEmpty() {
		return emptyResult(nil), nil
	}

	unlock, err := s.locks.Lock(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("waiting for game %d: %w", gameID, err)
	}
	defer unlock()

	items, characters, err := s.loadRoster(ctx, gameID)
	if err != nil {
		return nil, err
	}

	charKeys := characterKeys(characters)
	for _, d := range out.NewCharacters {
		addKey(charKeys, d.Name)
	}

	ir := s.newItemResolver(gameID, turn, "", items, charKeys)
	cr := s.newCharacterResolver(gameID, turn, "", characters)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ir.resolveDeclarations(out.NewItems)
		return gctx.Err()
	})
	g.Go(func() error {
		cr.resolveDeclarations(out.NewCharacters)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolving generator output: %w", err)
	}

	if err := s.commit(ctx, gameID, out.SegmentID, ir, cr); err != nil {
		return nil, err
	}

	s.logger.Info("generator output processed",
		zap.Int64("game_id", gameID),
		zap.Int64("segment_id", out.SegmentID),
		zap.Int("turn", turn),
		zap.Int("items_created", len(ir.created)),
		zap.Int("characters_created", len(cr.created)))

	return &SegmentResult{
		Items:      ir.results(),
		Characters: cr.results(),
	}, nil
}

func (s *SegmentService) loadRoster(ctx context.Context, gameID int64) ([]*entities.Item, []*entities.Character, error) {
	items, err := s.store.ListItems(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading items: %w", err)
	}
	characters, err := s.store.ListCharacters(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading characters: %w", err)
	}
	return items, characters, nil
}

// commit writes everything resolved for one call in a single transaction:
// new entities first, then back-references to characters created in the same
// call, then updates, then mentions.
func (s *SegmentService) commit(ctx context.Context, gameID, segmentID int64, ir *itemResolver, cr *characterResolver) error {
	err := s.store.WithinTx(ctx, func(tx ports.WorldTx) error {
		for _, item := range ir.created {
			if err := tx.CreateItem(ctx, item); err != nil {
				return fmt.Errorf("creating item %q: %w", item.Name, err)
			}
		}
		for _, c := range cr.created {
			if err := tx.CreateCharacter(ctx, c); err != nil {
				return fmt.Errorf("creating character %q: %w", c.Name, err)
			}
		}

		updates := append([]*entities.Character(nil), cr.touched...)
		for _, link := range cr.links {
			if refersTo(link.to, link.from) {
				continue
			}
			id := link.to.ID
			link.from.OriginalCharacterID = &id
			if link.from.ID != 0 && cr.isCreated(link.from) {
				updates = append(updates, link.from)
			}
		}

		for _, item := range ir.touched {
			if err := tx.UpdateItem(ctx, item); err != nil {
				return fmt.Errorf("updating item %d: %w", item.ID, err)
			}
		}
		for _, c := range updates {
			if err := tx.UpdateCharacter(ctx, c); err != nil {
				return fmt.Errorf("updating character %d: %w", c.ID, err)
			}
		}

		if segmentID <= 0 {
			return nil
		}
		for _, pm := range append(ir.mentions, cr.mentions...) {
			m := pm.toMention(gameID, segmentID)
			if err := tx.InsertMention(ctx, &m); err != nil {
				return fmt.Errorf("inserting mention: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("commit failed, roster unchanged",
			zap.Int64("game_id", gameID),
			zap.Int64("segment_id", segmentID),
			zap.Error(err))
		return fmt.Errorf("committing game %d: %w", gameID, err)
	}
	return nil
}

// change is a relationship bound to one entity, with the generator's reason
// when it came from an explicit tag.
type change struct {
	rel    entities.Relationship
	reason string
}

// pendingMention references an entity whose ID may not be assigned yet.
type pendingMention struct {
	item        *entities.Item
	character   *entities.Character
	stateChange bool
	newState    string
	context     string
}

func (pm pendingMention) toMention(gameID, segmentID int64) entities.Mention {
	m := entities.Mention{
		GameID:      gameID,
		SegmentID:   segmentID,
		StateChange: pm.stateChange,
		NewState:    pm.newState,
		Context:     pm.context,
	}
	if pm.item != nil {
		m.EntityType = entities.EntityTypeItem
		m.EntityID = pm.item.ID
	} else {
		m.EntityType = entities.EntityTypeCharacter
		m.EntityID = pm.character.ID
	}
	return m
}

// itemResolver owns the working copy of the item roster for one call.
type itemResolver struct {
	lc       *Lifecycle
	matcher  *Matcher
	scanner  RelationshipScanner
	gameID   int64
	turn     int
	text     string
	roster   []*entities.Item
	charKeys map[string]struct{}

	created  []*entities.Item
	touched  []*entities.Item
	seen     map[*entities.Item]bool
	mentions []pendingMention
}

func (s *SegmentService) newItemResolver(gameID int64, turn int, text string, roster []*entities.Item, charKeys map[string]struct{}) *itemResolver {
	return &itemResolver{
		lc:       s.lifecycle,
		matcher:  s.matcher,
		scanner:  s.scanner,
		gameID:   gameID,
		turn:     turn,
		text:     text,
		roster:   roster,
		charKeys: charKeys,
		seen:     make(map[*entities.Item]bool),
	}
}

func (r *itemResolver) resolveExtraction(ext *entities.Extraction) {
	var pool []change
	for _, rel := range ext.Relationships {
		if rel.Type == entities.RelationStateChange {
			pool = append(pool, change{rel: rel})
		}
	}
	used := make([]bool, len(pool))

	for _, name := range ext.Items {
		if r.skip(name) {
			continue
		}
		if item := r.matcher.MatchItem(name, r.roster); item != nil {
			r.update(item, "", takeMatching(r.matcher, pool, used, item))
			continue
		}
		alias := r.lc.HeadNounAlias(name, r.taken)
		probe := &entities.Item{Name: name, Aliases: nonEmpty(alias)}
		r.create(name, "", alias, takeMatching(r.matcher, pool, used, probe))
	}

	for i, ch := range pool {
		if !used[i] {
			r.resolveLoose(ch)
		}
	}
}

func (r *itemResolver) resolveDeclarations(declared []entities.DeclaredItem) {
	var loose []change
	for _, d := range declared {
		name := strings.TrimSpace(d.Name)
		if r.skip(name) {
			continue
		}

		item := r.matcher.MatchItem(name, r.roster)
		alias := ""
		var target entities.Named = item
		if item == nil {
			alias = r.lc.HeadNounAlias(name, r.taken)
			target = &entities.Item{Name: name, Aliases: nonEmpty(alias)}
		}

		var bound []change
		for _, tag := range ParseDeclarationTags(d.Description).Items {
			ch := change{
				rel: entities.Relationship{
					Type:     entities.RelationStateChange,
					Source:   tag.Name,
					NewState: tag.State,
					Context:  d.Description,
				},
				reason: tag.Reason,
			}
			if r.matcher.Matches(tag.Name, target) {
				bound = append(bound, ch)
			} else {
				loose = append(loose, ch)
			}
		}
		if len(bound) == 0 {
			for _, rel := range r.scanner.Relationships(d.Description) {
				if rel.Type == entities.RelationStateChange && refersToDeclared(r.matcher, rel.Source, target) {
					bound = append(bound, change{rel: rel})
				}
			}
		}

		if item != nil {
			r.update(item, d.Description, bound)
		} else {
			r.create(name, d.Description, alias, bound)
		}
	}

	for _, ch := range loose {
		r.resolveLoose(ch)
	}
}

// resolveLoose applies a state change no candidate claimed, creating the item
// when its source is specific enough.
func (r *itemResolver) resolveLoose(ch change) {
	src := strings.TrimSpace(ch.rel.Source)
	if r.skip(src) {
		return
	}
	if item := r.matcher.MatchItem(src, r.roster); item != nil {
		r.update(item, "", []change{ch})
		return
	}
	r.create(src, "", r.lc.HeadNounAlias(src, r.taken), []change{ch})
}

func (r *itemResolver) skip(name string) bool {
	if r.lc.IsGeneric(name) || extraction.IsFunctionWord(entities.NormalizeName(name)) {
		return true
	}
	_, isCharacter := r.charKeys[entities.NormalizeName(name)]
	return isCharacter
}

// create builds a new item, seeding its state from the first bound change.
func (r *itemResolver) create(name, description, alias string, bound []change) {
	initial := entities.ItemStateDefault
	sentence, reason := "", ""
	if len(bound) > 0 {
		initial = bound[0].rel.NewState
		sentence, reason = bound[0].rel.Context, bound[0].reason
		bound = bound[1:]
	}

	item := r.lc.newItem(r.gameID, name, r.turn, initial, sentence, reason)
	if item == nil {
		return
	}
	item.Description = strings.TrimSpace(description)
	if alias != "" {
		item.Aliases = append(item.Aliases, alias)
	}
	r.roster = append(r.roster, item)
	r.created = append(r.created, item)

	seeded := item.CurrentState != entities.ItemStateDefault
	if !seeded {
		sentence = r.contextFor(name, description)
	}
	r.mention(item, seeded, item.CurrentState, sentence)
	r.apply(item, bound)
}

// update touches an existing item and applies the bound changes.
func (r *itemResolver) update(item *entities.Item, description string, bound []change) {
	r.lc.TouchItem(item, r.turn)
	if item.Description == "" && strings.TrimSpace(description) != "" {
		item.Description = strings.TrimSpace(description)
	}
	if item.ID != 0 && !r.seen[item] {
		r.seen[item] = true
		r.touched = append(r.touched, item)
	}
	if !r.apply(item, bound) {
		r.mention(item, false, "", r.contextFor(item.Name, description))
	}
}

func (r *itemResolver) apply(item *entities.Item, bound []change) bool {
	applied := false
	for _, ch := range bound {
		if r.lc.applyStateChange(item, ch.rel.NewState, r.turn, ch.rel.Context, ch.reason) {
			applied = true
			r.mention(item, true, ch.rel.NewState, ch.rel.Context)
		}
	}
	return applied
}

func (r *itemResolver) mention(item *entities.Item, stateChange bool, state entities.ItemState, sentence string) {
	pm := pendingMention{item: item, stateChange: stateChange, context: sentence}
	if stateChange {
		pm.newState = string(state)
	}
	r.mentions = append(r.mentions, pm)
}

func (r *itemResolver) contextFor(name, description string) string {
	if description != "" {
		return description
	}
	return extraction.SentenceContaining(r.text, name)
}

// taken reports whether key is already a name or alias in either roster.
func (r *itemResolver) taken(key string) bool {
	if _, ok := r.charKeys[key]; ok {
		return true
	}
	for _, item := range r.roster {
		if entities.NormalizeName(item.Name) == key || entities.HasAlias(item.Aliases, key) {
			return true
		}
	}
	return false
}

func (r *itemResolver) results() []*entities.Item {
	out := make([]*entities.Item, 0, len(r.created)+len(r.touched))
	out = append(out, r.created...)
	return append(out, r.touched...)
}

// identityLink is a back-reference to a character saved in the same commit.
type identityLink struct {
	from *entities.Character
	to   *entities.Character
}

// characterResolver owns the working copy of the character roster for one call.
type characterResolver struct {
	lc      *Lifecycle
	matcher *Matcher
	scanner RelationshipScanner
	gameID  int64
	turn    int
	text    string
	roster  []*entities.Character

	created  []*entities.Character
	touched  []*entities.Character
	seen     map[*entities.Character]bool
	links    []identityLink
	mentions []pendingMention
}

func (s *SegmentService) newCharacterResolver(gameID int64, turn int, text string, roster []*entities.Character) *characterResolver {
	return &characterResolver{
		lc:      s.lifecycle,
		matcher: s.matcher,
		scanner: s.scanner,
		gameID:  gameID,
		turn:    turn,
		text:    text,
		roster:  roster,
		seen:    make(map[*entities.Character]bool),
	}
}

func (r *characterResolver) resolveExtraction(ext *entities.Extraction) {
	var pool []change
	unresolvedTargets := make(map[string]struct{})
	sources := make(map[string]struct{})
	for _, rel := range ext.Relationships {
		if rel.Type != entities.RelationIdentity {
			continue
		}
		pool = append(pool, change{rel: rel})
		addKey(sources, rel.Source)
		if r.matcher.MatchCharacter(rel.Target, r.roster) == nil {
			addKey(unresolvedTargets, rel.Target)
		}
	}
	used := make([]bool, len(pool))

	for _, name := range ext.Characters {
		if r.lc.IsGeneric(name) {
			continue
		}
		// A revealed identity is recorded on the source only. The target is
		// skipped even once the reveal has made it an alias of the source.
		key := entities.NormalizeName(name)
		_, isTarget := unresolvedTargets[key]
		_, isSource := sources[key]
		if isTarget && !isSource {
			continue
		}
		c := r.matcher.MatchCharacter(name, r.roster)
		if c == nil {
			if c = r.create(name, "", ""); c == nil {
				continue
			}
		} else {
			r.touch(c, "", "")
		}
		r.apply(c, takeMatching(r.matcher, pool, used, c))
	}

	for i, ch := range pool {
		if !used[i] {
			r.resolveLoose(ch)
		}
	}
}

func (r *characterResolver) resolveDeclarations(declared []entities.DeclaredCharacter) {
	var loose []change
	for _, d := range declared {
		name := strings.TrimSpace(d.Name)
		if r.lc.IsGeneric(name) {
			continue
		}

		c := r.matcher.MatchCharacter(name, r.roster)
		var target entities.Named = c
		if c == nil {
			target = &entities.Character{Name: name}
		}

		var bound []change
		for _, tag := range ParseDeclarationTags(d.Description).Characters {
			ch := change{
				rel: entities.Relationship{
					Type:    entities.RelationIdentity,
					Source:  tag.Name,
					Target:  tag.TrueName,
					Context: d.Description,
				},
				reason: tag.Reason,
			}
			if r.matcher.Matches(tag.Name, target) {
				bound = append(bound, ch)
			} else {
				loose = append(loose, ch)
			}
		}
		if len(bound) == 0 {
			for _, rel := range r.scanner.Relationships(d.Description) {
				if rel.Type == entities.RelationIdentity && refersToDeclared(r.matcher, rel.Source, target) {
					bound = append(bound, change{rel: rel})
				}
			}
		}

		if c == nil {
			if c = r.create(name, d.Description, d.Relationship); c == nil {
				continue
			}
		} else {
			r.touch(c, d.Description, d.Relationship)
		}
		r.apply(c, bound)
	}

	for _, ch := range loose {
		r.resolveLoose(ch)
	}
}

// resolveLoose applies an identity reveal no candidate claimed.
func (r *characterResolver) resolveLoose(ch change) {
	src := strings.TrimSpace(ch.rel.Source)
	if r.lc.IsGeneric(src) || extraction.IsFunctionWord(entities.NormalizeName(src)) {
		return
	}
	c := r.matcher.MatchCharacter(src, r.roster)
	if c == nil {
		if c = r.create(src, "", ""); c == nil {
			return
		}
	} else {
		r.touch(c, "", "")
	}
	r.apply(c, []change{ch})
}

func (r *characterResolver) create(name, description, relationship string) *entities.Character {
	c := r.lc.NewCharacter(r.gameID, name, r.turn)
	if c == nil {
		return nil
	}
	c.Description = strings.TrimSpace(description)
	c.Relationship = strings.TrimSpace(relationship)
	r.roster = append(r.roster, c)
	r.created = append(r.created, c)
	return c
}

func (r *characterResolver) touch(c *entities.Character, description, relationship string) {
	r.lc.TouchCharacter(c, r.turn)
	if c.Description == "" && strings.TrimSpace(description) != "" {
		c.Description = strings.TrimSpace(description)
	}
	if rel := strings.TrimSpace(relationship); rel != "" {
		c.Relationship = rel
	}
	if c.ID != 0 && !r.seen[c] {
		r.seen[c] = true
		r.touched = append(r.touched, c)
	}
}

// apply runs the bound identity reveals and records one mention per reveal,
// or a plain mention when none applied.
func (r *characterResolver) apply(c *entities.Character, bound []change) {
	applied := false
	for _, ch := range bound {
		linked, ok := r.lc.applyIdentity(c, ch.rel.Target, r.roster, r.turn, ch.rel.Context, ch.reason)
		if !ok {
			continue
		}
		applied = true
		if linked != nil && linked.ID == 0 {
			r.links = append(r.links, identityLink{from: c, to: linked})
		}
		r.mentions = append(r.mentions, pendingMention{
			character:   c,
			stateChange: true,
			newState:    entities.HistoryEventIdentityRevealed,
			context:     ch.rel.Context,
		})
	}
	if !applied {
		r.mentions = append(r.mentions, pendingMention{
			character: c,
			context:   r.contextFor(c),
		})
	}
}

func (r *characterResolver) contextFor(c *entities.Character) string {
	if r.text == "" {
		return c.Description
	}
	if s := extraction.SentenceContaining(r.text, c.Name); s != "" {
		return s
	}
	for _, a := range c.Aliases {
		if s := extraction.SentenceContaining(r.text, a); s != "" {
			return s
		}
	}
	return ""
}

func (r *characterResolver) isCreated(c *entities.Character) bool {
	for _, created := range r.created {
		if created == c {
			return true
		}
	}
	return false
}

func (r *characterResolver) results() []*entities.Character {
	out := make([]*entities.Character, 0, len(r.created)+len(r.touched))
	out = append(out, r.created...)
	return append(out, r.touched...)
}

// takeMatching marks and returns the unused changes whose source refers to target.
func takeMatching(m *Matcher, pool []change, used []bool, target entities.Named) []change {
	var out []change
	for i, ch := range pool {
		if !used[i] && m.Matches(ch.rel.Source, target) {
			used[i] = true
			out = append(out, ch)
		}
	}
	return out
}

// refersToDeclared reports whether a relationship source found in a
// generator description points at the declared entity.
func refersToDeclared(m *Matcher, source string, target entities.Named) bool {
	return extraction.IsPronoun(entities.NormalizeName(source)) || m.Matches(source, target)
}

func validateTarget(gameID int64, turn int) error {
	if gameID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidGameID, gameID)
	}
	if turn < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTurn, turn)
	}
	return nil
}

func characterKeys(roster []*entities.Character) map[string]struct{} {
	keys := make(map[string]struct{}, len(roster))
	for _, c := range roster {
		addKey(keys, c.Name)
		for _, a := range c.Aliases {
			addKey(keys, a)
		}
	}
	return keys
}

func addKey(keys map[string]struct{}, name string) {
	if key := entities.NormalizeName(name); key != "" {
		keys[key] = struct{}{}
	}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func emptyResult(extracted *entities.Extraction) *SegmentResult {
	return &SegmentResult{
		Items:      []*entities.Item{},
		Characters: []*entities.Character{},
		Extracted:  extracted,
	}
}
