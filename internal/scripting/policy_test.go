package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voltfall/tactics/internal/scripting"
)

// aggressiveLua mirrors the built-in runner policy: escape when badly hurt,
// attack the first enemy in range, otherwise pass.
const aggressiveLua = `
function decide(view)
	if view.escape_available and view.active.hp * 2 < view.active.max_hp then
		return { action = "escape" }
	end
	for _, e in ipairs(view.enemies) do
		if engine.dist(view.active.x, view.active.y, e.x, e.y) <= view.active.range then
			return { action = "attack", target = e.id }
		end
	end
	return { action = "end_turn" }
end
`

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.lua")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func loadPolicy(t *testing.T, src string) *scripting.Policy {
	t.Helper()
	p, err := scripting.LoadPolicy(writeScript(t, src), 0, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func skirmishView() scripting.TurnView {
	return scripting.TurnView{
		Round:      2,
		GridWidth:  20,
		GridHeight: 20,
		Active: scripting.ActorView{
			ID: "vega", Name: "Vega", X: 3, Y: 3,
			HP: 40, MaxHP: 40, AP: 3, Morale: 50, Range: 6, Damage: 10,
		},
		Allies: []scripting.ActorView{
			{ID: "jackie", Name: "Jackie", X: 2, Y: 2, HP: 30, MaxHP: 50, AP: 0, Morale: 50, Range: 1, Damage: 12},
		},
		Enemies: []scripting.ActorView{
			{ID: "razor", Name: "Razor", X: 8, Y: 8, HP: 38, MaxHP: 38, AP: 0, Morale: 50, Range: 6, Damage: 10},
		},
	}
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := scripting.LoadPolicy("/nonexistent/policy.lua", 0, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadPolicy_NoDecideFunction(t *testing.T) {
	_, err := scripting.LoadPolicy(writeScript(t, `x = 1`), 0, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not define")
}

func TestLoadPolicy_SyntaxError(t *testing.T) {
	_, err := scripting.LoadPolicy(writeScript(t, `function decide(`), 0, zap.NewNop())
	assert.Error(t, err)
}

func TestPolicy_AttacksEnemyInRange(t *testing.T) {
	p := loadPolicy(t, aggressiveLua)

	view := skirmishView()
	view.Enemies[0].X, view.Enemies[0].Y = 5, 5

	d, err := p.Decide(view)
	require.NoError(t, err)
	assert.Equal(t, "attack", d.Action)
	assert.Equal(t, "razor", d.Target)
}

func TestPolicy_PassesWhenOutOfRange(t *testing.T) {
	p := loadPolicy(t, aggressiveLua)

	d, err := p.Decide(skirmishView())
	require.NoError(t, err)
	assert.Equal(t, "end_turn", d.Action)
}

func TestPolicy_EscapesWhenHurt(t *testing.T) {
	p := loadPolicy(t, aggressiveLua)

	view := skirmishView()
	view.EscapeAvailable = true
	view.Active.HP = 10

	d, err := p.Decide(view)
	require.NoError(t, err)
	assert.Equal(t, "escape", d.Action)
	assert.Empty(t, d.Sacrifice)
}

func TestPolicy_MoveTowardEnemy(t *testing.T) {
	p := loadPolicy(t, `
function decide(view)
	local e = view.enemies[1]
	if e == nil then return { action = "end_turn" } end
	local dx = 0
	if e.x > view.active.x then dx = 1 elseif e.x < view.active.x then dx = -1 end
	local dy = 0
	if e.y > view.active.y then dy = 1 elseif e.y < view.active.y then dy = -1 end
	return { action = "move", x = view.active.x + dx, y = view.active.y + dy }
end
`)

	d, err := p.Decide(skirmishView())
	require.NoError(t, err)
	assert.Equal(t, "move", d.Action)
	assert.Equal(t, 4, d.X)
	assert.Equal(t, 4, d.Y)
}

func TestPolicy_SacrificePassthrough(t *testing.T) {
	p := loadPolicy(t, `
function decide(view)
	return { action = "escape", sacrifice = view.allies[1].id }
end
`)

	d, err := p.Decide(skirmishView())
	require.NoError(t, err)
	assert.Equal(t, "escape", d.Action)
	assert.Equal(t, "jackie", d.Sacrifice)
}

func TestPolicy_RejectsNonTableReturn(t *testing.T) {
	p := loadPolicy(t, `function decide(view) return 42 end`)

	_, err := p.Decide(skirmishView())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must return a table")
}

func TestPolicy_RejectsUnknownAction(t *testing.T) {
	p := loadPolicy(t, `function decide(view) return { action = "dance" } end`)

	_, err := p.Decide(skirmishView())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "dance"`)
}

func TestPolicy_RejectsAttackWithoutTarget(t *testing.T) {
	p := loadPolicy(t, `function decide(view) return { action = "attack" } end`)

	_, err := p.Decide(skirmishView())
	assert.Error(t, err)
}

func TestPolicy_RejectsMoveWithoutCoordinates(t *testing.T) {
	p := loadPolicy(t, `function decide(view) return { action = "move", x = 3 } end`)

	_, err := p.Decide(skirmishView())
	assert.Error(t, err)
}

func TestPolicy_RuntimeErrorSurfaces(t *testing.T) {
	p := loadPolicy(t, `function decide(view) error("boom") end`)

	_, err := p.Decide(skirmishView())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPolicy_BudgetResetsPerDecide(t *testing.T) {
	src := `
function decide(view)
	if view.round == 1 then
		while true do end
	end
	return { action = "end_turn" }
end
`
	p, err := scripting.LoadPolicy(writeScript(t, src), 1000, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	view := skirmishView()
	view.Round = 1
	_, err = p.Decide(view)
	require.Error(t, err, "runaway decide call should hit the opcode budget")

	view.Round = 2
	d, err := p.Decide(view)
	require.NoError(t, err, "next call gets its own budget")
	assert.Equal(t, "end_turn", d.Action)
}

func TestPolicy_ClosedRefusesDecide(t *testing.T) {
	p, err := scripting.LoadPolicy(writeScript(t, aggressiveLua), 0, zap.NewNop())
	require.NoError(t, err)

	p.Close()
	_, err = p.Decide(skirmishView())
	assert.Error(t, err)
}
