package agent

import (
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/vec"
)

// AttackKind способ атаки класса
type AttackKind uint8

const (
	AttackNone       AttackKind = iota // Только контактный урон телом
	AttackProjectile                   // Один снаряд в цель
	AttackSpread                       // Веер снарядов
)

// EnemyStats характеристики класса врага
type EnemyStats struct {
	Region             entity.Region
	MaxHP              float64 // 0: неуязвим (скалы, стихии)
	Size               float64
	Speed              float64
	RotationSpeed      float64
	AgroRange          float64
	StopRadius         float64
	AttackDistance     float64
	Attack             AttackKind
	Cooldown           float64
	Damage             float64
	ProjectileSpeed    float64
	ProjectileLifetime float64
	ProjectileSize     float64
	Volley             int     // Снарядов в веере
	VolleyArc          float64 // Угол между снарядами веера
	BodyDamage         float64 // Постоянный контактный хитбокс
	IFrames            float64 // Неуязвимость цели после контакта
	Lifetime           float64 // Время жизни стихии; 0 — бессрочно
	Hazard             bool
	Gold               int
}

// Hurtable может ли класс получать урон
func (s EnemyStats) Hurtable() bool {
	return s.MaxHP > 0
}

// Footprint размер сущности
func (s EnemyStats) Footprint() vec.Vec2 {
	return vec.Vec2{X: s.Size, Y: s.Size}
}

var enemyTable = map[entity.EnemyClass]EnemyStats{
	entity.ClassBat: {
		Region: entity.RegionDungeon, MaxHP: 2, Size: 32,
		Speed: 150, RotationSpeed: 6, AgroRange: 700, StopRadius: 0,
		Attack: AttackNone, BodyDamage: 1, Gold: 1,
	},
	entity.ClassSkeleton: {
		Region: entity.RegionDungeon, MaxHP: 3, Size: 40,
		Speed: 90, RotationSpeed: 4, AgroRange: 700, StopRadius: 150, AttackDistance: 450,
		Attack: AttackProjectile, Cooldown: 2, Damage: 1,
		ProjectileSpeed: 300, ProjectileLifetime: 2, ProjectileSize: 12, Gold: 2,
	},
	entity.ClassBoss: {
		Region: entity.RegionDungeon, MaxHP: 30, Size: 128,
		Speed: 60, RotationSpeed: 2, AgroRange: 1000, StopRadius: 200, AttackDistance: 800,
		Attack: AttackSpread, Cooldown: 1.5, Damage: 2,
		ProjectileSpeed: 350, ProjectileLifetime: 3, ProjectileSize: 16,
		Volley: 3, VolleyArc: 0.26, BodyDamage: 2, Gold: 50,
	},
	entity.ClassKraken: {
		Region: entity.RegionOcean, MaxHP: 10, Size: 96,
		Speed: 40, RotationSpeed: 1.5, AgroRange: 600, StopRadius: 200, AttackDistance: 500,
		Attack: AttackSpread, Cooldown: 3, Damage: 1,
		ProjectileSpeed: 250, ProjectileLifetime: 3, ProjectileSize: 14,
		Volley: 2, VolleyArc: 0.4, Gold: 10,
	},
	entity.ClassGhostShip: {
		Region: entity.RegionOcean, MaxHP: 8, Size: 80,
		Speed: 120, RotationSpeed: 1, AgroRange: 800, StopRadius: 250, AttackDistance: 600,
		Attack: AttackProjectile, Cooldown: 2.5, Damage: 2,
		ProjectileSpeed: 400, ProjectileLifetime: 2, ProjectileSize: 14, Gold: 8,
	},
	entity.ClassRock: {
		Region: entity.RegionOcean, Size: 64,
		BodyDamage: 1, IFrames: 1,
	},
	entity.ClassWhirlpool: {
		Region: entity.RegionOcean, Size: 120,
		BodyDamage: 1, IFrames: 1.5, Lifetime: 10, Hazard: true,
	},
	entity.ClassStorm: {
		Region: entity.RegionOcean, Size: 200, Speed: 30,
		BodyDamage: 1, IFrames: 2, Lifetime: 15, Hazard: true,
	},
}

// Enemy возвращает характеристики класса врага
func Enemy(class entity.EnemyClass) (EnemyStats, bool) {
	s, ok := enemyTable[class]
	return s, ok
}

// RegionClasses возвращает не-стихийные классы врагов, активных в регионе
func RegionClasses(region entity.Region) []entity.EnemyClass {
	var out []entity.EnemyClass
	for _, c := range entity.EnemyClasses {
		if s := enemyTable[c]; s.Region == region && !s.Hazard {
			out = append(out, c)
		}
	}
	return out
}

// WeaponStats характеристики оружия игрока
type WeaponStats struct {
	BaseDamage         float64
	Cooldown           float64
	Melee              bool
	HitboxSize         float64
	Reach              float64 // Смещение хитбокса взмаха от владельца
	SwingLifetime      float64 // Время жизни хитбокса взмаха
	SwingDuration      float64 // Время жизни сущности взмаха (анимация)
	ProjectileSpeed    float64
	ProjectileLifetime float64
	Price              int
	Naval              bool // Доступно только на корабле
}

var weaponTable = map[entity.WeaponClass]WeaponStats{
	entity.WeaponSword: {
		BaseDamage: 1, Cooldown: 0.5, Melee: true,
		HitboxSize: 48, Reach: 36, SwingLifetime: 0.1, SwingDuration: 0.3, Price: 10,
	},
	entity.WeaponDagger: {
		BaseDamage: 0.75, Cooldown: 0.25, Melee: true,
		HitboxSize: 28, Reach: 24, SwingLifetime: 0.08, SwingDuration: 0.15, Price: 15,
	},
	entity.WeaponBow: {
		BaseDamage: 1, Cooldown: 0.6, HitboxSize: 10,
		ProjectileSpeed: 500, ProjectileLifetime: 1.5, Price: 25,
	},
	entity.WeaponCannon: {
		BaseDamage: 2, Cooldown: 1, HitboxSize: 14,
		ProjectileSpeed: 450, ProjectileLifetime: 2, Price: 40, Naval: true,
	},
}

// Weapon возвращает характеристики оружия
func Weapon(class entity.WeaponClass) (WeaponStats, bool) {
	s, ok := weaponTable[class]
	return s, ok
}

// WeaponDamage урон с учётом уровня улучшения
func WeaponDamage(class entity.WeaponClass, level int) float64 {
	s, ok := weaponTable[class]
	if !ok {
		return 0
	}
	return s.BaseDamage * (1 + float64(level)*0.25)
}

// NewItem создаёт предмет инвентаря с ценой следующего улучшения
func NewItem(class entity.WeaponClass, level int) entity.Item {
	s := weaponTable[class]
	return entity.Item{Weapon: class, Level: level, Price: s.Price * (level + 1)}
}
