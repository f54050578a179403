package network

import (
	"github.com/annel0/seafarer/internal/protocol"
	"github.com/annel0/seafarer/internal/sim"
)

func playerState(rec protocol.PlayerRecord) sim.PlayerState {
	return sim.PlayerState{
		NetID:    rec.ID,
		Position: rec.Position,
		Rotation: rec.Rotation,
		Boat:     rec.Boat,
		Used:     rec.Used,
		Seq:      rec.Seq,
		Session:  rec.Session,
	}
}

func playerRecord(st sim.PlayerState, addr string) protocol.PlayerRecord {
	return protocol.PlayerRecord{
		ID:       st.NetID,
		Addr:     addr,
		Position: st.Position,
		Rotation: st.Rotation,
		Boat:     st.Boat,
		Used:     st.Used,
		Seq:      st.Seq,
	}
}

func enemyState(rec protocol.EnemyRecord) sim.EnemyState {
	return sim.EnemyState{
		NetID:    rec.ID,
		Class:    rec.Class,
		Position: rec.Position,
		Rotation: rec.Rotation,
		HP:       rec.HP,
	}
}

func enemyRecord(st sim.EnemyState) protocol.EnemyRecord {
	return protocol.EnemyRecord{
		ID:       st.NetID,
		Class:    st.Class,
		Position: st.Position,
		Rotation: st.Rotation,
		HP:       st.HP,
	}
}

func enemyRecords(states []sim.EnemyState) []protocol.EnemyRecord {
	out := make([]protocol.EnemyRecord, 0, len(states))
	for _, st := range states {
		out = append(out, enemyRecord(st))
	}
	return out
}

func enemyStates(records []protocol.EnemyRecord) []sim.EnemyState {
	out := make([]sim.EnemyState, 0, len(records))
	for _, rec := range records {
		out = append(out, enemyState(rec))
	}
	return out
}
