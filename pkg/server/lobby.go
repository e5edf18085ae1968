package server

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"

	"github.com/vctt94/holdem/pkg/poker"
)

// lobbyCmd is one unit of work for a lobby actor. Every mutation of a
// lobby's game, including departures detected by the transport, arrives as
// a command on the lobby's channel and is processed strictly in arrival
// order.
type lobbyCmd interface {
	lobbyCmd()
}

type cmdJoin struct {
	sess   *session
	userID string
	name   string
}

type cmdLeave struct {
	userID string
}

// cmdDepart is a transport-detected disconnect. It carries the failed
// connection's session so a depart from a connection that already lost its
// seat to a reconnect is recognized as stale.
type cmdDepart struct {
	sess   *session
	userID string
}

type cmdBet struct {
	userID string
	action string
	amount int64
}

type cmdStartNext struct {
	userID string
}

type cmdOdds struct {
	userID  string
	samples int
}

func (cmdJoin) lobbyCmd()      {}
func (cmdLeave) lobbyCmd()     {}
func (cmdDepart) lobbyCmd()    {}
func (cmdBet) lobbyCmd()       {}
func (cmdStartNext) lobbyCmd() {}
func (cmdOdds) lobbyCmd()      {}

// Lobby owns one Game and the sessions seated at it. A single goroutine
// (run) processes every command, so the Game needs no locking of its own.
// Lobbies are independent of each other; only the registry's maps are
// shared.
type Lobby struct {
	ID string

	log     slog.Logger
	store   Store
	game    *poker.Game
	rng     *rand.Rand
	onClose func(id string)

	sessions map[string]*session   // userID -> live connection
	profiles map[string]playerInfo // userID -> join-time metadata

	cmds chan lobbyCmd
	done chan struct{}

	awaitingNext bool // a showdown settled; waiting for start_next_round
	closing      bool
}

func newLobby(id string, cfg poker.GameConfig, store Store, log slog.Logger, onClose func(string)) (*Lobby, error) {
	game, err := poker.NewGame(cfg)
	if err != nil {
		return nil, err
	}
	l := &Lobby{
		ID:       id,
		log:      log,
		store:    store,
		game:     game,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		onClose:  onClose,
		sessions: make(map[string]*session),
		profiles: make(map[string]playerInfo),
		cmds:     make(chan lobbyCmd, 32),
		done:     make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// enqueue submits a command for processing. It reports false when the
// lobby already shut down, in which case the caller should treat the lobby
// as gone.
func (l *Lobby) enqueue(cmd lobbyCmd) bool {
	select {
	case l.cmds <- cmd:
		return true
	case <-l.done:
		return false
	}
}

func (l *Lobby) run() {
	for cmd := range l.cmds {
		l.handle(cmd)
		if l.closing {
			close(l.done)
			l.onClose(l.ID)
			return
		}
	}
}

func (l *Lobby) handle(cmd lobbyCmd) {
	switch c := cmd.(type) {
	case cmdJoin:
		l.handleJoin(c)
	case cmdLeave:
		l.handleDeparture(c.userID)
	case cmdDepart:
		if l.sessions[c.userID] != c.sess {
			// The seat is owned by a newer connection (or already vacated);
			// this depart came from a connection that no longer matters.
			l.log.Debugf("ignoring stale depart for %s in lobby %s", c.userID, l.ID)
			return
		}
		l.handleDeparture(c.userID)
	case cmdBet:
		l.handleBet(c)
	case cmdStartNext:
		l.handleStartNext()
	case cmdOdds:
		l.handleOdds(c)
	}
}

func (l *Lobby) handleJoin(c cmdJoin) {
	if p := l.game.PlayerByID(c.userID); p != nil {
		if p.Status() == poker.StatusDisconnected {
			if err := l.game.Reconnect(c.userID); err != nil {
				c.sess.sendError(err)
				return
			}
			l.sessions[c.userID] = c.sess
			l.log.Infof("player %s reconnected to lobby %s", c.userID, l.ID)
			l.sendInitialState(c.userID, c.sess)
			l.broadcastGameState("", false)
			return
		}
		if l.game.Started() {
			// Post-start joins are reconnects only; this seat still has a
			// live connection.
			c.sess.sendError(fmt.Errorf("server: player %s is already connected to lobby %s", c.userID, l.ID))
			return
		}
		// Same user on a fresh connection before the game started: rebind.
		l.sessions[c.userID] = c.sess
		l.sendInitialState(c.userID, c.sess)
		return
	}

	if l.game.Started() {
		c.sess.sendError(fmt.Errorf("server: game in lobby %s already started", l.ID))
		return
	}

	name := l.resolveName(c.userID, c.name)
	if _, err := l.game.AddPlayer(c.userID, name); err != nil {
		if errors.Is(err, poker.ErrGameFull) {
			err = ErrLobbyFull
		}
		c.sess.sendError(err)
		return
	}

	l.sessions[c.userID] = c.sess
	l.profiles[c.userID] = playerInfo{
		ID:             c.userID,
		Name:           name,
		ProfilePicture: l.resolvePicture(c.userID),
	}
	l.log.Infof("player %s (%s) joined lobby %s (%d/%d seats)",
		c.userID, name, l.ID, l.game.SeatedCount(), l.game.PlayerLimit())

	l.broadcastInitialState()

	if l.game.SeatedCount() == l.game.PlayerLimit() {
		l.startHand()
	}
}

// resolveName prefers the client-supplied name, then the stored username,
// then the raw user ID. Store failures are logged and swallowed.
func (l *Lobby) resolveName(userID, name string) string {
	if name != "" {
		return name
	}
	stored, err := l.store.GetUsername(userID)
	if err != nil || stored == "" {
		if err != nil {
			l.log.Debugf("get username for %s: %v", userID, err)
		}
		return userID
	}
	return stored
}

func (l *Lobby) resolvePicture(userID string) string {
	pic, err := l.store.GetProfilePicture(userID)
	if err != nil {
		l.log.Debugf("get profile picture for %s: %v", userID, err)
		return ""
	}
	return pic
}

// handleDeparture runs both intentional leaves and transport disconnects.
// Before the game starts the player is removed and seats compact; after it
// starts they are marked disconnected in place so the hand and seat
// indexes stay stable for a reconnect.
func (l *Lobby) handleDeparture(userID string) {
	if _, ok := l.sessions[userID]; !ok && l.game.PlayerByID(userID) == nil {
		return
	}
	delete(l.sessions, userID)

	if !l.game.Started() {
		delete(l.profiles, userID)
		if err := l.game.RemovePlayer(userID); err != nil && !errors.Is(err, poker.ErrUnknownPlayer) {
			l.log.Warnf("remove player %s: %v", userID, err)
		}
		l.log.Infof("player %s left lobby %s before start", userID, l.ID)
		l.broadcastPlayerLeft(userID)
		if len(l.sessions) == 0 {
			l.shutdown(LobbyStatusAbandoned)
		}
		return
	}

	res, err := l.game.Depart(userID)
	if err != nil && !errors.Is(err, poker.ErrUnknownPlayer) {
		l.log.Warnf("depart player %s: %v", userID, err)
	}
	l.log.Infof("player %s departed lobby %s mid-game", userID, l.ID)
	l.broadcastPlayerLeft(userID)
	if res != nil {
		l.dispatchResult(res)
	}

	// With at most one connected player left there is nobody to play
	// against; tear the lobby down.
	if !l.closing && len(l.sessions) <= 1 {
		status := LobbyStatusAbandoned
		if l.game.Completed() {
			status = LobbyStatusCompleted
		}
		l.shutdown(status)
	}
}

func (l *Lobby) handleBet(c cmdBet) {
	sess := l.sessions[c.userID]

	res, err := l.game.HandleAction(c.userID, poker.Action(c.action), c.amount)
	if err != nil {
		if !isValidationError(err) {
			// Anything else means the hand state is suspect; keep a full
			// dump for the postmortem.
			l.log.Errorf("action %s by %s failed: %v", c.action, c.userID, err)
			l.log.Errorf("game state: %s", spew.Sdump(l.game.StateMinimal()))
		}
		if sess != nil {
			sess.sendError(err)
		}
		return
	}
	l.dispatchResult(res)
}

// isValidationError reports whether the error is an expected rejection of
// a client action rather than an engine failure.
func isValidationError(err error) bool {
	return errors.Is(err, poker.ErrNotYourTurn) ||
		errors.Is(err, poker.ErrGameNotStarted) ||
		errors.Is(err, poker.ErrAlreadyFolded) ||
		errors.Is(err, poker.ErrInsufficientRaise) ||
		errors.Is(err, poker.ErrInsufficientChips) ||
		errors.Is(err, poker.ErrUnknownPlayer) ||
		errors.Is(err, poker.ErrUnknownAction)
}

// dispatchResult translates an engine outcome into the matching broadcast.
func (l *Lobby) dispatchResult(res *poker.ActionResult) {
	switch res.Outcome {
	case poker.OutcomeContinue, poker.OutcomeRoundAdvanced:
		l.broadcastGameState("", false)

	case poker.OutcomeSkipRound:
		// Auto-dealt streets first, then the settlement.
		l.broadcastGameState("", true)
		l.settleShowdown(res.Showdown)

	case poker.OutcomeShowdown:
		l.settleShowdown(res.Showdown)

	case poker.OutcomeHandWon:
		// The pot was awarded on a fold-out and the next hand already
		// started; the state the players see is the fresh hand.
		l.broadcastGameState(res.Summary, false)
		if res.Showdown != nil {
			l.settleShowdown(res.Showdown)
		}

	case poker.OutcomeGameComplete:
		l.completeGame()

	default:
		l.log.Errorf("unhandled action outcome %s", res.Outcome)
		l.log.Errorf("game state: %s", spew.Sdump(l.game.StateMinimal()))
	}
}

func (l *Lobby) handleStartNext() {
	if !l.awaitingNext {
		// Duplicate or premature request; the first one already dealt.
		return
	}
	l.awaitingNext = false
	l.startHand()
}

func (l *Lobby) handleOdds(c cmdOdds) {
	sess := l.sessions[c.userID]
	if sess == nil {
		return
	}
	p := l.game.PlayerByID(c.userID)
	if p == nil || len(p.Hand) == 0 {
		sess.sendError(fmt.Errorf("server: no hand to estimate odds for"))
		return
	}

	odds := poker.EstimateOdds(p.Hand, l.game.Board(), c.samples, l.rng)
	out := make(map[string]float64, len(odds))
	for cat, frac := range odds {
		out[cat.String()] = frac
	}
	sess.send(handOddsResultMsg{Type: msgHandOddsResult, Odds: out})
}

// startHand deals the next hand, or runs game completion when the engine
// reports no further hand can start.
func (l *Lobby) startHand() {
	result, err := l.game.StartHand()
	if errors.Is(err, poker.ErrGameComplete) {
		l.completeGame()
		return
	}
	if err != nil {
		l.log.Errorf("start hand: %v", err)
		l.log.Errorf("game state: %s", spew.Sdump(l.game.StateMinimal()))
		return
	}

	l.log.Debugf("lobby %s dealt hand %d", l.ID, l.game.HandNum())
	l.broadcastInitialState()

	// Blinds can force everyone all-in and settle the hand immediately.
	if result != nil {
		l.settleShowdown(result)
	}
}

// settleShowdown persists and broadcasts a settled hand, then waits for a
// start_next_round request.
func (l *Lobby) settleShowdown(sd *poker.ShowdownResult) {
	if sd == nil {
		return
	}
	l.recordHand(sd)
	l.broadcastShowdown(sd)
	l.awaitingNext = true
}

// completeGame broadcasts the final standings and tears the lobby down.
func (l *Lobby) completeGame() {
	standings := l.standings()
	view := l.game.StateMinimal()
	for _, sess := range l.sessions {
		sess.send(completedStateMsg{
			Type:      msgUpdateCompleted,
			LobbyID:   l.ID,
			GameState: view,
			Standings: standings,
		})
	}
	l.shutdown(LobbyStatusCompleted)
}

func (l *Lobby) standings() []standing {
	var out []standing
	for _, p := range l.game.Players() {
		if p == nil {
			continue
		}
		out = append(out, standing{
			UserID:      p.ID,
			Name:        p.Name,
			FinishPlace: p.FinishPlace,
			Chips:       p.Chips,
			Stats:       p.Stats,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinishPlace < out[j].FinishPlace })
	return out
}

func (l *Lobby) shutdown(status string) {
	if l.closing {
		return
	}
	l.closing = true
	if err := l.store.SetLobbyStatus(l.ID, status); err != nil {
		l.log.Warnf("set lobby %s status %s: %v", l.ID, status, err)
	}
	l.log.Infof("lobby %s shut down: %s", l.ID, status)
}

// recordHand persists per-hand statistics. Failures never interrupt play.
func (l *Lobby) recordHand(sd *poker.ShowdownResult) {
	result := &HandResult{HandNum: l.game.HandNum()}
	for _, pot := range sd.Pots {
		result.Summaries = append(result.Summaries, pot.Summary)
	}
	for _, p := range l.game.Players() {
		if p == nil {
			continue
		}
		result.Players = append(result.Players, PlayerResult{
			UserID:   p.ID,
			Name:     p.Name,
			Chips:    p.Chips,
			WonRound: p.WonRound,
			Stats:    p.Stats,
		})
	}
	if err := l.store.RecordHandResult(l.ID, result); err != nil {
		l.log.Warnf("record hand result for lobby %s: %v", l.ID, err)
	}
}

func (l *Lobby) playerInfos() []playerInfo {
	out := make([]playerInfo, 0, len(l.profiles))
	for _, info := range l.profiles {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *Lobby) sendInitialState(userID string, sess *session) {
	sess.send(initialStateMsg{
		Type:      msgInitialState,
		LobbyID:   l.ID,
		GameState: l.game.StateFor(userID),
		Players:   l.playerInfos(),
	})
}

func (l *Lobby) broadcastInitialState() {
	for userID, sess := range l.sessions {
		l.sendInitialState(userID, sess)
	}
}

func (l *Lobby) broadcastGameState(summary string, skipRound bool) {
	for userID, sess := range l.sessions {
		sess.send(gameStateMsg{
			Type:      msgUpdateGameState,
			LobbyID:   l.ID,
			GameState: l.game.StateFor(userID),
			SkipRound: skipRound,
			Summary:   summary,
		})
	}
}

func (l *Lobby) broadcastShowdown(sd *poker.ShowdownResult) {
	pots := make([]potResultJSON, 0, len(sd.Pots))
	for _, pot := range sd.Pots {
		pots = append(pots, potResultJSON{
			Amount:  pot.Amount,
			Winners: pot.Winners,
			Summary: pot.Summary,
		})
	}
	view := l.game.StateRevealed()
	for _, sess := range l.sessions {
		sess.send(showdownStateMsg{
			Type:      msgUpdateShowdown,
			LobbyID:   l.ID,
			GameState: view,
			Pots:      pots,
		})
	}
}

func (l *Lobby) broadcastPlayerLeft(userID string) {
	view := l.game.StateDeparted(userID)
	for _, sess := range l.sessions {
		sess.send(playerLeftMsg{
			Type:      msgPlayerLeft,
			LobbyID:   l.ID,
			UserID:    userID,
			GameState: view,
		})
	}
}
