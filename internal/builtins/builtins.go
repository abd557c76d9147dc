// Package builtins holds the engine-provided function and constant tables.
// The tables are constructed once at process start and never mutated; every
// analysis run works with a version-filtered copy.
package builtins

import (
	"nwlint/internal/eval"
	"nwlint/internal/gamever"
	"nwlint/internal/types"
)

// ParamSpec is one declared parameter of an engine function. Parameters
// with HasDefault set may be omitted at the call site.
type ParamSpec struct {
	Name       string
	Type       types.Type
	HasDefault bool
	Default    eval.Value // meaningful only when HasDefault
}

// FunctionSignature describes a callable function: engine built-ins, include
// files, and user declarations all share this shape.
type FunctionSignature struct {
	Name       string
	ReturnType types.Type
	Params     []ParamSpec
	Category   string
	Avail      gamever.Version
}

// MinArgs is the number of parameters without a default value.
func (f *FunctionSignature) MinArgs() int {
	n := 0
	for _, p := range f.Params {
		if !p.HasDefault {
			n++
		}
	}
	return n
}

// MaxArgs is the total declared parameter count.
func (f *FunctionSignature) MaxArgs() int {
	return len(f.Params)
}

// ConstantSignature describes an engine constant.
type ConstantSignature struct {
	Name  string
	Type  types.Type
	Value eval.Value
	Avail gamever.Version
}

// ---------------------------------------------------------------------------
// Table construction helpers
// ---------------------------------------------------------------------------

func p(name string, t types.Type) ParamSpec {
	return ParamSpec{Name: name, Type: t}
}

func pd(name string, t types.Type, def eval.Value) ParamSpec {
	return ParamSpec{Name: name, Type: t, HasDefault: true, Default: def}
}

func fn(avail gamever.Version, category, name string, ret types.Type, params ...ParamSpec) FunctionSignature {
	return FunctionSignature{Name: name, ReturnType: ret, Params: params, Category: category, Avail: avail}
}

func konst(avail gamever.Version, name string, v eval.Value) ConstantSignature {
	return ConstantSignature{Name: name, Type: v.Type(), Value: v, Avail: avail}
}

// ---------------------------------------------------------------------------
// Engine function table
// ---------------------------------------------------------------------------

// Functions returns the engine function table. The set here covers the
// routines the analyzer and its tests exercise; externally resolved tables
// are merged on top via MergeFunctions.
func Functions() []FunctionSignature {
	both := gamever.Both
	k1 := gamever.K1
	k2 := gamever.K2

	return []FunctionSignature{
		// Actions and commands
		fn(both, "actions", "AssignCommand", types.TypeVoid,
			p("oActionSubject", types.TypeObject), p("aActionToAssign", types.TypeAction)),
		fn(both, "actions", "DelayCommand", types.TypeVoid,
			p("fSeconds", types.TypeFloat), p("aActionToDelay", types.TypeAction)),
		fn(both, "actions", "ActionDoCommand", types.TypeVoid,
			p("aActionToDo", types.TypeAction)),
		fn(both, "actions", "ActionMoveToObject", types.TypeVoid,
			p("oMoveTo", types.TypeObject),
			pd("bRun", types.TypeInt, eval.IntVal(0)),
			pd("fRange", types.TypeFloat, eval.FloatVal(1.0))),
		fn(both, "actions", "ActionAttack", types.TypeVoid,
			p("oAttackee", types.TypeObject),
			pd("bPassive", types.TypeInt, eval.IntVal(0))),
		fn(both, "actions", "ClearAllActions", types.TypeVoid),

		// Object queries
		fn(both, "objects", "GetObjectByTag", types.TypeObject,
			p("sTag", types.TypeString),
			pd("nNth", types.TypeInt, eval.IntVal(0))),
		fn(both, "objects", "GetTag", types.TypeString, p("oObject", types.TypeObject)),
		fn(both, "objects", "GetFirstPC", types.TypeObject),
		fn(both, "objects", "GetIsObjectValid", types.TypeInt, p("oObject", types.TypeObject)),
		fn(both, "objects", "GetPosition", types.TypeVector, p("oTarget", types.TypeObject)),
		fn(both, "objects", "GetFacing", types.TypeFloat, p("oTarget", types.TypeObject)),
		fn(both, "objects", "GetLocation", types.TypeLocation, p("oObject", types.TypeObject)),
		fn(both, "objects", "GetArea", types.TypeObject, p("oTarget", types.TypeObject)),
		fn(both, "objects", "CreateObject", types.TypeObject,
			p("nObjectType", types.TypeInt),
			p("sTemplate", types.TypeString),
			p("lLocation", types.TypeLocation),
			pd("bUseAppearAnimation", types.TypeInt, eval.IntVal(0))),
		fn(both, "objects", "DestroyObject", types.TypeVoid,
			p("oDestroy", types.TypeObject),
			pd("fDelay", types.TypeFloat, eval.FloatVal(0.0))),
		fn(both, "objects", "GetHitDice", types.TypeInt, p("oCreature", types.TypeObject)),
		fn(both, "objects", "GetIsEnemy", types.TypeInt,
			p("oTarget", types.TypeObject),
			pd("oSource", types.TypeObject, eval.IntVal(0))),

		// Effects
		fn(both, "effects", "EffectDamage", types.TypeEffect,
			p("nDamageAmount", types.TypeInt),
			pd("nDamageType", types.TypeInt, eval.IntVal(8)),
			pd("nDamagePower", types.TypeInt, eval.IntVal(0))),
		fn(both, "effects", "EffectHeal", types.TypeEffect, p("nDamageToHeal", types.TypeInt)),
		fn(both, "effects", "ApplyEffectToObject", types.TypeVoid,
			p("nDurationType", types.TypeInt),
			p("eEffect", types.TypeEffect),
			p("oTarget", types.TypeObject),
			pd("fDuration", types.TypeFloat, eval.FloatVal(0.0))),

		// Events and talents
		fn(both, "events", "EventUserDefined", types.TypeEvent, p("nUserDefinedEventNumber", types.TypeInt)),
		fn(both, "events", "SignalEvent", types.TypeVoid,
			p("oObject", types.TypeObject), p("evToRun", types.TypeEvent)),
		fn(both, "events", "GetUserDefinedEventNumber", types.TypeInt),
		fn(both, "talents", "TalentSpell", types.TypeTalent, p("nSpell", types.TypeInt)),
		fn(both, "talents", "TalentFeat", types.TypeTalent, p("nFeat", types.TypeInt)),

		// Globals
		fn(both, "globals", "GetGlobalNumber", types.TypeInt, p("sIdentifier", types.TypeString)),
		fn(both, "globals", "SetGlobalNumber", types.TypeVoid,
			p("sIdentifier", types.TypeString), p("nValue", types.TypeInt)),
		fn(both, "globals", "GetGlobalBoolean", types.TypeInt, p("sIdentifier", types.TypeString)),
		fn(both, "globals", "SetGlobalBoolean", types.TypeVoid,
			p("sIdentifier", types.TypeString), p("nValue", types.TypeInt)),

		// Math and conversion
		fn(both, "math", "Random", types.TypeInt, p("nMaxInteger", types.TypeInt)),
		fn(both, "math", "d20", types.TypeInt, pd("nNumDice", types.TypeInt, eval.IntVal(1))),
		fn(both, "math", "fabs", types.TypeFloat, p("fValue", types.TypeFloat)),
		fn(both, "math", "sqrt", types.TypeFloat, p("fValue", types.TypeFloat)),
		fn(both, "math", "IntToFloat", types.TypeFloat, p("nInteger", types.TypeInt)),
		fn(both, "math", "FloatToInt", types.TypeInt, p("fFloat", types.TypeFloat)),
		fn(both, "math", "IntToString", types.TypeString, p("nInteger", types.TypeInt)),
		fn(both, "math", "StringToInt", types.TypeInt, p("sNumber", types.TypeString)),
		fn(both, "math", "Vector", types.TypeVector,
			pd("x", types.TypeFloat, eval.FloatVal(0.0)),
			pd("y", types.TypeFloat, eval.FloatVal(0.0)),
			pd("z", types.TypeFloat, eval.FloatVal(0.0))),
		fn(both, "math", "VectorMagnitude", types.TypeFloat, p("vVector", types.TypeVector)),
		fn(both, "math", "VectorNormalize", types.TypeVector, p("vVector", types.TypeVector)),

		// Strings
		fn(both, "strings", "GetStringLength", types.TypeInt, p("sString", types.TypeString)),
		fn(both, "strings", "GetStringUpperCase", types.TypeString, p("sString", types.TypeString)),
		fn(both, "strings", "GetSubString", types.TypeString,
			p("sString", types.TypeString), p("nStart", types.TypeInt), p("nCount", types.TypeInt)),
		fn(both, "strings", "SendMessageToPC", types.TypeVoid,
			p("oPlayer", types.TypeObject), p("szMessage", types.TypeString)),
		fn(both, "strings", "PrintString", types.TypeVoid, p("sString", types.TypeString)),

		// KotOR 1 only
		fn(k1, "module", "ShowTutorialWindow", types.TypeVoid, p("nWindow", types.TypeInt)),
		fn(k1, "party", "AddPartyMember", types.TypeInt,
			p("nNPC", types.TypeInt), p("oCreature", types.TypeObject)),

		// The Sith Lords only
		fn(k2, "module", "GetScriptParameter", types.TypeInt, p("nIndex", types.TypeInt)),
		fn(k2, "module", "GetScriptStringParameter", types.TypeString),
		fn(k2, "party", "GetPartyLeader", types.TypeObject),
		fn(k2, "influence", "GetInfluence", types.TypeInt, p("nNPC", types.TypeInt)),
		fn(k2, "influence", "ModifyInfluence", types.TypeVoid,
			p("nNPC", types.TypeInt), p("nModifier", types.TypeInt)),
		fn(k2, "combat", "RemoveHeartbeat", types.TypeVoid, p("oPlaceable", types.TypeObject)),
	}
}

// ---------------------------------------------------------------------------
// Engine constant table
// ---------------------------------------------------------------------------

// Constants returns the engine constant table.
func Constants() []ConstantSignature {
	both := gamever.Both
	k2 := gamever.K2

	return []ConstantSignature{
		konst(both, "TRUE", eval.IntVal(1)),
		konst(both, "FALSE", eval.IntVal(0)),

		konst(both, "OBJECT_TYPE_CREATURE", eval.IntVal(1)),
		konst(both, "OBJECT_TYPE_ITEM", eval.IntVal(2)),
		konst(both, "OBJECT_TYPE_TRIGGER", eval.IntVal(4)),
		konst(both, "OBJECT_TYPE_DOOR", eval.IntVal(8)),
		konst(both, "OBJECT_TYPE_PLACEABLE", eval.IntVal(64)),
		konst(both, "OBJECT_TYPE_ALL", eval.IntVal(32767)),

		konst(both, "DURATION_TYPE_INSTANT", eval.IntVal(0)),
		konst(both, "DURATION_TYPE_TEMPORARY", eval.IntVal(1)),
		konst(both, "DURATION_TYPE_PERMANENT", eval.IntVal(2)),

		konst(both, "DAMAGE_TYPE_BLUDGEONING", eval.IntVal(1)),
		konst(both, "DAMAGE_TYPE_PIERCING", eval.IntVal(2)),
		konst(both, "DAMAGE_TYPE_SLASHING", eval.IntVal(4)),
		konst(both, "DAMAGE_TYPE_UNIVERSAL", eval.IntVal(8)),

		konst(both, "PI", eval.FloatVal(3.141592)),

		// Influence NPC slots only exist in the second game.
		konst(k2, "NPC_ATTON", eval.IntVal(0)),
		konst(k2, "NPC_BAO_DUR", eval.IntVal(1)),
		konst(k2, "NPC_KREIA", eval.IntVal(6)),
		konst(k2, "NPC_MIRA", eval.IntVal(8)),
	}
}

// ---------------------------------------------------------------------------
// Version gating and merging
// ---------------------------------------------------------------------------

// FilterFunctions restricts a function table to the given target version.
// Version-inappropriate built-ins simply become unknown to the analyzer;
// the dialect pass layers a friendlier message on top separately.
func FilterFunctions(table []FunctionSignature, v gamever.Version) map[string]*FunctionSignature {
	out := make(map[string]*FunctionSignature, len(table))
	for i := range table {
		f := &table[i]
		if !v.Includes(f.Avail) {
			continue
		}
		// First writer wins on duplicates.
		if _, exists := out[f.Name]; !exists {
			out[f.Name] = f
		}
	}
	return out
}

// FilterConstants restricts a constant table to the given target version.
func FilterConstants(table []ConstantSignature, v gamever.Version) map[string]*ConstantSignature {
	out := make(map[string]*ConstantSignature, len(table))
	for i := range table {
		c := &table[i]
		if !v.Includes(c.Avail) {
			continue
		}
		if _, exists := out[c.Name]; !exists {
			out[c.Name] = c
		}
	}
	return out
}

// MergeFunctions merges externally resolved signatures (include files) over
// a base table, first writer wins.
func MergeFunctions(base []FunctionSignature, extra []FunctionSignature) []FunctionSignature {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]FunctionSignature, 0, len(base)+len(extra))
	for _, f := range base {
		if !seen[f.Name] {
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	for _, f := range extra {
		if !seen[f.Name] {
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	return out
}

// MergeConstants is MergeFunctions for constants.
func MergeConstants(base []ConstantSignature, extra []ConstantSignature) []ConstantSignature {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]ConstantSignature, 0, len(base)+len(extra))
	for _, c := range base {
		if !seen[c.Name] {
			seen[c.Name] = true
			out = append(out, c)
		}
	}
	for _, c := range extra {
		if !seen[c.Name] {
			seen[c.Name] = true
			out = append(out, c)
		}
	}
	return out
}
