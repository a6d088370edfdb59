package memory

import "matchroom/model"

// AddPlayer allocates a fresh identity. Ids are handed out from a
// wrapping counter that skips ids still alive, so an id is only reused
// long after its previous owner disconnected.
func (ms *MemStore) AddPlayer(name string) (model.Player, error) {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	id, err := ms.nextPlayerID()
	if err != nil {
		return model.Player{}, err
	}
	p := &model.Player{ID: id, Name: name}
	ms.players[id] = p
	return *p, nil
}

// nextPlayerID probes at most len(players)+1 candidates: a run of
// taken ids can never be longer than the number of live players, so
// hitting the probe limit means the whole id space is occupied.
func (ms *MemStore) nextPlayerID() (uint32, error) {
	for probes := 0; probes <= len(ms.players); probes++ {
		ms.advancePlayerID()
		if _, taken := ms.players[ms.lastPlayerID]; !taken {
			return ms.lastPlayerID, nil
		}
	}
	return 0, ErrPlayerIDsExhausted
}

func (ms *MemStore) advancePlayerID() {
	ms.lastPlayerID++
	if ms.lastPlayerID == 0 { // id 0 is reserved as "no player"
		ms.lastPlayerID = 1
	}
}

// RemovePlayer deletes an identity, forcing it out of its room first.
func (ms *MemStore) RemovePlayer(id uint32) error {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	if _, ok := ms.players[id]; !ok {
		return ErrPlayerNotFound
	}
	_ = ms.leaveRoomLocked(id) // lobby players have nothing to leave
	delete(ms.players, id)
	return nil
}

func (ms *MemStore) RenamePlayer(id uint32, newName string) error {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	p, ok := ms.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Name = newName
	return nil
}

// GetPlayer returns a copy of the player record.
func (ms *MemStore) GetPlayer(id uint32) (model.Player, error) {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	p, ok := ms.players[id]
	if !ok {
		return model.Player{}, ErrPlayerNotFound
	}
	return *p, nil
}
