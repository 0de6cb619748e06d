package main

// StartGame starts the clock and gives the first tank the opening turn
func (w *World) StartGame() {
	if w.started {
		return
	}
	w.started = true
	if len(w.tanks) == 0 {
		return
	}
	first := w.tanks[0]
	first.Fired = false
	w.currentTurn = first.ID
	w.events = append(w.events, Event{Kind: EventNextTurn, TankID: first.ID})
}

// NextTurn passes the turn to the next living tank in join order, wrapping
// around. Every turn change also wears the open wormholes.
func (w *World) NextTurn() {
	start := -1
	for i, t := range w.tanks {
		if t.ID == w.currentTurn {
			start = i
			break
		}
	}
	w.advanceTurn(start)
}

// advanceTurn hands the turn to the first living tank after index start
func (w *World) advanceTurn(start int) {
	n := len(w.tanks)
	for k := 1; k <= n; k++ {
		t := w.tanks[floorMod(start+k, n)]
		if t.Dead {
			continue
		}
		t.Fired = false
		w.currentTurn = t.ID
		w.events = append(w.events, Event{Kind: EventNextTurn, TankID: t.ID})
		break
	}

	for _, wh := range w.wormholes {
		if !wh.Disabled && wh.Wear() {
			w.closeWormhole(wh)
		}
	}
}

// IsGameOver is false until the game starts, then true once fewer than two
// tanks are alive.
func (w *World) IsGameOver() bool {
	if !w.started {
		return false
	}
	alive := 0
	for _, t := range w.tanks {
		if !t.Dead {
			alive++
		}
	}
	return alive < 2
}

// Winner returns the last tank standing, if any
func (w *World) Winner() *Tank {
	var winner *Tank
	for _, t := range w.tanks {
		if t.Dead {
			continue
		}
		if winner != nil {
			return nil
		}
		winner = t
	}
	return winner
}
