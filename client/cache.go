package client

import (
	"slices"
	"sync"

	"matchroom/model"
)

// cache mirrors server-confirmed truth for one session: own identity,
// current room, admin flag and the other room members. It is never
// updated ahead of a server answer or notification.
type cache struct {
	mx      sync.Mutex
	self    model.Player
	room    string
	isAdmin bool
	others  []model.Player
}

func (c *cache) setSelf(p model.Player) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.self = p
}

func (c *cache) setName(name string) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.self.Name = name
}

// enterRoom seeds the room view from a membership snapshot (ordered
// admin-first, including self). The admin flag is derived from the
// snapshot head, not assumed.
func (c *cache) enterRoom(room string, snapshot []model.Player) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.room = room
	c.self.Room = room
	c.isAdmin = len(snapshot) > 0 && snapshot[0].ID == c.self.ID
	c.others = c.others[:0]
	for _, p := range snapshot {
		if p.ID != c.self.ID {
			c.others = append(c.others, p)
		}
	}
}

func (c *cache) leaveRoom() {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.room = ""
	c.self.Room = ""
	c.isAdmin = false
	c.others = nil
}

func (c *cache) grantAdmin() {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.isAdmin = true
}

func (c *cache) addOther(p model.Player) {
	c.mx.Lock()
	defer c.mx.Unlock()
	for _, o := range c.others {
		if o.ID == p.ID {
			return
		}
	}
	p.Room = c.room
	c.others = append(c.others, p)
}

func (c *cache) removeOther(id uint32) {
	c.mx.Lock()
	defer c.mx.Unlock()
	for i, o := range c.others {
		if o.ID == id {
			c.others = slices.Delete(c.others, i, i+1)
			return
		}
	}
}

func (c *cache) renameOther(id uint32, name string) {
	c.mx.Lock()
	defer c.mx.Unlock()
	for i := range c.others {
		if c.others[i].ID == id {
			c.others[i].Name = name
			return
		}
	}
}

func (c *cache) reset() {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.self = model.Player{}
	c.room = ""
	c.isAdmin = false
	c.others = nil
}

func (c *cache) snapshot() (model.Player, string, bool, []model.Player) {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.self, c.room, c.isAdmin, slices.Clone(c.others)
}
