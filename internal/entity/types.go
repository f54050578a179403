package entity

import "fmt"

// Kind тип сущности
type Kind uint8

const (
	KindPlayer Kind = iota
	KindBoat
	KindEnemy
	KindProjectile
	KindHazard
	KindWeapon
	KindSwing // Кратковременный взмах оружия ближнего боя
)

var kindNames = [...]string{"player", "boat", "enemy", "projectile", "hazard", "weapon", "swing"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind_%d", int(k))
}

// EnemyClass закрытый набор классов врагов
type EnemyClass uint8

const (
	ClassBat EnemyClass = iota
	ClassKraken
	ClassGhostShip
	ClassRock
	ClassSkeleton
	ClassBoss
	ClassWhirlpool
	ClassStorm
)

var enemyNames = [...]string{"bat", "kraken", "ghost_ship", "rock", "skeleton", "boss", "whirlpool", "storm"}

// EnemyClasses все классы в порядке объявления
var EnemyClasses = []EnemyClass{
	ClassBat, ClassKraken, ClassGhostShip, ClassRock,
	ClassSkeleton, ClassBoss, ClassWhirlpool, ClassStorm,
}

func (c EnemyClass) String() string {
	if int(c) < len(enemyNames) {
		return enemyNames[c]
	}
	return fmt.Sprintf("enemy_%d", int(c))
}

// ParseEnemyClass разбирает имя класса из сетевого представления
func ParseEnemyClass(name string) (EnemyClass, error) {
	for i, n := range enemyNames {
		if n == name {
			return EnemyClass(i), nil
		}
	}
	return 0, fmt.Errorf("неизвестный класс врага %q", name)
}

// MarshalText для JSON
func (c EnemyClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText для JSON
func (c *EnemyClass) UnmarshalText(text []byte) error {
	parsed, err := ParseEnemyClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// WeaponClass закрытый набор оружия игрока
type WeaponClass uint8

const (
	WeaponSword WeaponClass = iota
	WeaponDagger
	WeaponBow
	WeaponCannon
)

var weaponNames = [...]string{"sword", "dagger", "bow", "cannon"}

// WeaponClasses все виды оружия
var WeaponClasses = []WeaponClass{WeaponSword, WeaponDagger, WeaponBow, WeaponCannon}

func (w WeaponClass) String() string {
	if int(w) < len(weaponNames) {
		return weaponNames[w]
	}
	return fmt.Sprintf("weapon_%d", int(w))
}

// Region игровая область
type Region uint8

const (
	RegionTown Region = iota
	RegionOcean
	RegionDungeon
)

var regionNames = [...]string{"town", "ocean", "dungeon"}

func (r Region) String() string {
	if int(r) < len(regionNames) {
		return regionNames[r]
	}
	return fmt.Sprintf("region_%d", int(r))
}
