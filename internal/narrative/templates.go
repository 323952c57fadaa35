package narrative

import (
	"fmt"
	"strings"
)

// Family is a group of interchangeable post templates sharing one set of
// placeholders.
type Family string

const (
	FamilyAchievement Family = "achievement"
	FamilyMilestone   Family = "milestone"
	FamilyPriceJump   Family = "price_jump"
)

// Placeholder keys. Templates write them as {key}.
const (
	KeyName       = "name"
	KeyRole       = "role"
	KeyCount      = "count"
	KeyType       = "type"
	KeyVelocity   = "velocity"
	KeyEfficiency = "efficiency"
	KeyCost       = "cost"
	KeyMilestone  = "milestone"
	KeyTotalTasks = "totalTasks"
	KeyHired      = "hired"
)

type templateSet struct {
	keys      []string
	templates []string
}

var families = map[Family]templateSet{
	FamilyAchievement: {
		keys: []string{KeyName, KeyRole, KeyCount, KeyType, KeyVelocity, KeyEfficiency, KeyCost},
		templates: []string{
			"🎉 Big shoutout to {name}! Just wrapped up {count} {type} in record time. This {role} is on fire!",
			"⚡ {name} is on a tear: {count} {type} completed at {efficiency}% efficiency.",
			"🚀 {name} just set a new personal best with a {velocity} velocity score and it is still climbing.",
			"💪 {name} keeps proving why they are one of our top {role}s. {count} {type} done and dusted.",
			"🔥 {name} closed {count} {type} with an efficiency rating of {efficiency}%. Hire them before the price goes up!",
			"⭐ Standing ovation for {name}! {count} {type} completed, velocity at {velocity}.",
			"🎯 {name} is in the zone: {count} {type} knocked out. Current cost: ${cost}, but not for long at this rate!",
			"💎 {name} continues to shine with another {count} {type}. Efficiency: {efficiency}%, Velocity: {velocity}.",
		},
	},
	FamilyMilestone: {
		keys: []string{KeyName, KeyRole, KeyMilestone, KeyCost, KeyVelocity, KeyEfficiency},
		templates: []string{
			"🏆 MILESTONE ALERT! {name} just hit {milestone} total completions! This {role} is crushing it.",
			"🎊 {name} reached {milestone} successful completions. The stats don't lie: top tier.",
			"⚡ BREAKING: {name} crosses the {milestone} completion mark! Currently priced at ${cost} and trending up.",
			"🌟 {milestone} completions and counting! {name} is redefining what a {role} can do.",
		},
	},
	FamilyPriceJump: {
		keys: []string{KeyName, KeyCost, KeyVelocity, KeyEfficiency, KeyTotalTasks, KeyHired},
		templates: []string{
			"📈 PRICE UPDATE: {name} now costs ${cost} to hire. Velocity: {velocity}, Efficiency: {efficiency}.",
			"💰 Market adjustment for {name}! New cost: ${cost}. With {velocity} velocity and {efficiency}% efficiency it is still a steal.",
			"🔔 {name} just earned a cost increase to ${cost}: {totalTasks} tasks completed at {efficiency}% efficiency.",
			"📊 Performance-based pricing update: {name} now at ${cost}. {hired} teams already on board!",
		},
	},
}

// Keys returns the placeholders a family's templates may use.
func Keys(f Family) []string {
	set, ok := families[f]
	if !ok {
		return nil
	}
	return append([]string(nil), set.keys...)
}

// Templates returns the templates of a family in selection order.
func Templates(f Family) []string {
	set, ok := families[f]
	if !ok {
		return nil
	}
	return append([]string(nil), set.templates...)
}

// Render fills template index i of family f. Values for keys outside the
// family are ignored; missing values render as empty strings.
func Render(f Family, i int, values map[string]string) (string, error) {
	set, ok := families[f]
	if !ok {
		return "", fmt.Errorf("unknown template family %q", f)
	}
	if i < 0 || i >= len(set.templates) {
		return "", fmt.Errorf("template %d out of range for family %q", i, f)
	}
	pairs := make([]string, 0, 2*len(set.keys))
	for _, k := range set.keys {
		pairs = append(pairs, "{"+k+"}", values[k])
	}
	return strings.NewReplacer(pairs...).Replace(set.templates[i]), nil
}
