package summarize

import "github.com/parentbud/carecards/internal/topics"

// topicTemplates holds hand-written tip sets for the topics the catalog ships
// with. Unknown topics fall back to genericTemplates, so the template path is
// total for any topic id.
var topicTemplates = map[string][]TipSet{
	"tantrums": {
		{
			Title:    "Staying Calm Through the Storm",
			Subtitle: "Your calm is contagious",
			Tips: []string{
				"Stay nearby and keep your own voice low; a tantrum ends faster when it does not become a negotiation.",
				"Name the feeling out loud, for example say you are really angry that we had to leave the park.",
				"Wait until the crying passes its peak before talking; mid-meltdown reasoning does not land.",
				"Offer a simple choice once your child is calm again, like walk to the car or be carried.",
				"Afterwards reconnect with a hug first and save any teaching moment for later in the day.",
			},
		},
		{
			Title:    "Heading Off Meltdowns",
			Subtitle: "Prevention beats cure",
			Tips: []string{
				"Give a five minute warning before transitions so the change does not arrive as a surprise.",
				"Keep snacks and naps on schedule; most tantrums ride in on hunger or tiredness.",
				"Offer small choices through the day so your child feels some control before the big no arrives.",
				"Notice and praise calm moments so attention does not only follow the loud ones.",
			},
		},
	},
	"sleep": {
		{
			Title:    "Building a Bedtime Routine",
			Subtitle: "Same steps, same order, every night",
			Tips: []string{
				"Run the same short sequence every night, such as bath, pajamas, two books, song, lights out.",
				"Start winding down thirty minutes before bedtime and keep screens out of that window.",
				"Keep the bedroom dark, cool and boring; the bed is for sleeping, not for play.",
				"Leave while your child is drowsy but still awake so falling asleep does not depend on you.",
				"Return briefly and calmly for callbacks; each visit gets shorter and quieter.",
			},
		},
	},
	"eating_habits": {
		{
			Title:    "Making Peace With Picky Eating",
			Subtitle: "You decide the menu, they decide the amount",
			Tips: []string{
				"Serve one familiar food alongside anything new so there is always something safe on the plate.",
				"Keep offering refused foods without comment; it can take a dozen exposures before a taste lands.",
				"Let your child serve themselves small portions so trying feels like their own idea.",
				"Skip the pressure and the praise for eating; keep mealtime talk about the day, not the plate.",
				"Eat the same meal together when you can, because children copy what they watch.",
			},
		},
	},
	"screen_time": {
		{
			Title:    "Setting Screen Limits That Stick",
			Subtitle: "Clear rules beat daily battles",
			Tips: []string{
				"Agree the daily limit in advance and post it where everyone can see it.",
				"Use a visible timer so the screen ends the session instead of you.",
				"Keep screens out of bedrooms and away from the dinner table for everyone, adults included.",
				"Plan what comes after the screen goes off so the end leads into something, not into nothing.",
			},
		},
	},
	"separation_anxiety": {
		{
			Title:    "Easier Goodbyes",
			Subtitle: "Short, warm and predictable",
			Tips: []string{
				"Create a short goodbye ritual, such as a hug, a kiss and a wave from the window, and repeat it every time.",
				"Leave once you have said goodbye; returning for one more hug teaches that crying brings you back.",
				"Tell your child exactly when you will return in words they understand, like after snack time.",
				"Practice small separations at home first, starting with another room for a few minutes.",
				"Keep your own face relaxed at drop-off; children read your expression before your words.",
			},
		},
	},
	"potty_training": {
		{
			Title:    "Low-Pressure Potty Training",
			Subtitle: "Follow readiness, not the calendar",
			Tips: []string{
				"Wait for readiness signs such as staying dry for two hours and showing interest in the toilet.",
				"Sit your child on the potty at predictable times, like after meals and before bed.",
				"Celebrate attempts as much as successes and never punish accidents.",
				"Dress your child in pants they can pull down alone so the potty is reachable in time.",
			},
		},
	},
}

// genericTemplates serves any topic without a dedicated set. Titles come from
// the topic itself so the card still reads as the caller's subject.
var genericTemplates = []TipSet{
	{
		Tips: []string{
			"Pick one small change and keep it consistent for two weeks before judging whether it works.",
			"Narrate what you want to see, not what you want to stop; children follow the picture you paint.",
			"Catch your child doing it right and name it specifically, because praised behavior repeats.",
			"Stay calm in the hard moments; your steadiness is the skill your child is borrowing.",
		},
	},
}

// templateTips returns the static tip sets for a topic, stamped with the
// topic's own metadata and age groups.
func templateTips(topic topics.Topic) []TipSet {
	sets, ok := topicTemplates[topic.ID]
	if !ok {
		sets = genericTemplates
	}
	out := make([]TipSet, len(sets))
	for i, s := range sets {
		out[i] = s
		out[i].Tips = append([]string(nil), s.Tips...)
		if out[i].Title == "" {
			out[i].Title = topic.Title
		}
		if out[i].Subtitle == "" {
			out[i].Subtitle = topic.Subtitle
		}
		out[i].AgeGroups = append([]string(nil), topic.AgeGroups...)
	}
	return out
}
