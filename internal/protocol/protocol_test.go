package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/vec"
)

func TestPlayerRecord_RoundTrip(t *testing.T) {
	rec := PlayerRecord{
		ID:       3,
		Addr:     "127.0.0.1:51000",
		Position: vec.Vec3{X: 10.5, Y: -5.25, Z: 3},
		Rotation: vec.QuatFromAngle(1.25),
		Boat:     true,
		Used:     true,
		Seq:      42,
	}

	data, err := Encode(TagPlayerUpdate, rec)
	require.NoError(t, err)

	env, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TagPlayerUpdate, env.Message)

	got, err := Unpack[PlayerRecord](env)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestEncode_WireShape(t *testing.T) {
	data, err := Encode(TagJoinedLobby, JoinReply{ID: 0, Tiles: 4, Token: "t"})
	require.NoError(t, err)

	var outer map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &outer))
	assert.Equal(t, "joined_lobby", outer["message"])

	packet, ok := outer["packet"].(string)
	require.True(t, ok, "пакет передаётся строкой")
	assert.JSONEq(t, `{"payload":{"id":0,"tiles":4,"token":"t"}}`, packet)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("не json"))
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = Decode([]byte(`{"packet":"{}"}`))
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = Decode([]byte(`{"message":"teleport","packet":"{}"}`))
	assert.True(t, errors.Is(err, ErrUnknownMessage))

	env, err := Decode([]byte(`{"message":"player_update","packet":"{broken"}`))
	require.NoError(t, err)
	_, err = Unpack[PlayerRecord](env)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestEnemyBatch_ClassByName(t *testing.T) {
	batch := EnemyBatch{Seq: 7, Enemies: []EnemyRecord{{ID: 1, Class: entity.ClassGhostShip, HP: 8}}}
	data, err := Encode(TagUpdateEnemies, batch)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ghost_ship`)

	env, err := Decode(data)
	require.NoError(t, err)
	got, err := Unpack[EnemyBatch](env)
	require.NoError(t, err)
	assert.Equal(t, batch, got)
}
