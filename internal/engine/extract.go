package engine

import (
	"regexp"
	"strings"

	"roadreport/internal/model"
	"roadreport/internal/schema"
)

// Updates is the set of slot writes produced by one turn. The caller
// applies it atomically.
type Updates map[model.SlotID]string

var yearRe = regexp.MustCompile(`\b(19[89]\d|20[0-2]\d)\b`)

var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true,
}

// knownMakes is ordered so multi-brand utterances resolve deterministically.
var knownMakes = []string{
	"FORD", "TOYOTA", "HONDA", "CHEVROLET", "TESLA", "BMW", "MERCEDES",
	"NISSAN", "HYUNDAI", "KIA", "VOLVO", "AUDI", "VOLKSWAGEN", "JEEP",
	"DODGE", "SUBARU", "MAZDA", "LEXUS", "ACURA", "INFINITI", "CADILLAC",
	"GMC",
}

var yesSynonyms = map[string]bool{"yes": true, "y": true, "yeah": true}

type extractInput struct {
	raw    string
	clean  string
	upper  string
	record model.Record
}

// An extractRule scans the whole utterance for one signal and writes into
// the update set. Rules only ever fill slots that are still null.
type extractRule struct {
	name  string
	apply func(in extractInput, u Updates)
}

var opportunisticRules = []extractRule{
	{
		name: "year",
		apply: func(in extractInput, u Updates) {
			if in.record.Has(model.SlotModelYear) {
				return
			}
			if m := yearRe.FindStringSubmatch(in.raw); m != nil {
				u[model.SlotModelYear] = m[1]
			}
		},
	},
	{
		name: "state",
		apply: func(in extractInput, u Updates) {
			if in.record.Has(model.SlotState) {
				return
			}
			// Whole input matches case-insensitively; inside longer text the
			// token must already be upper case, otherwise words like "in" and
			// "me" register as states.
			if usStates[in.upper] {
				u[model.SlotState] = in.upper
				return
			}
			for _, tok := range strings.Fields(in.raw) {
				if len(tok) == 2 && tok == strings.ToUpper(tok) && usStates[tok] {
					u[model.SlotState] = tok
					return
				}
			}
		},
	},
	{
		name: "make",
		apply: func(in extractInput, u Updates) {
			if in.record.Has(model.SlotMake) {
				return
			}
			for _, brand := range knownMakes {
				if strings.Contains(in.upper, brand) {
					u[model.SlotMake] = titleCase(brand)
					return
				}
			}
		},
	},
	{
		name: "crash",
		apply: func(in extractInput, u Updates) {
			if in.record.Has(model.SlotCrash) {
				return
			}
			if strings.Contains(in.upper, "CRASH") || strings.Contains(in.upper, "ACCIDENT") {
				u[model.SlotCrash] = "YES"
			}
		},
	},
	{
		name: "fire",
		apply: func(in extractInput, u Updates) {
			if in.record.Has(model.SlotFire) {
				return
			}
			if strings.Contains(in.upper, "FIRE") || strings.Contains(in.upper, "SMOKE") {
				u[model.SlotFire] = "YES"
			}
		},
	},
}

// Extract runs the opportunistic rules over the whole utterance, then
// attempts the direct mapping for the current target slot. The direct
// mapping is skipped when an opportunistic rule already claimed that exact
// slot this turn. An empty result means the caller must re-prompt the same
// slot.
func Extract(text string, record model.Record, current *model.SlotID, sch *schema.Schema) Updates {
	in := extractInput{
		raw:    text,
		clean:  strings.TrimSpace(text),
		upper:  strings.ToUpper(strings.TrimSpace(text)),
		record: record,
	}
	u := make(Updates)

	for _, rule := range opportunisticRules {
		rule.apply(in, u)
	}

	if current != nil {
		if _, claimed := u[*current]; !claimed {
			directMap(in, *current, sch, u)
		}
	}

	return u
}

// directMap assigns the trimmed utterance to the slot being asked about,
// with the per-slot exceptions from the original rules.
func directMap(in extractInput, target model.SlotID, sch *schema.Schema, u Updates) {
	slot := sch.SlotByID(target)
	if slot == nil {
		return
	}

	val := in.clean
	lower := strings.ToLower(val)

	if lower == "skip" {
		u[target] = "N/A"
		return
	}

	switch slot.Kind {
	case schema.KindYesNo:
		if yesSynonyms[lower] {
			u[target] = "YES"
		} else {
			u[target] = "NO"
		}
	case schema.KindState:
		if len(val) == 2 && usStates[strings.ToUpper(val)] {
			u[target] = strings.ToUpper(val)
		}
		// otherwise rejected: no update, caller re-prompts
	default:
		u[target] = val
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
