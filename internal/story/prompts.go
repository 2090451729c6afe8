package story

import (
	"fmt"
	"strings"
)

// Markers are the labeled section headers the model is instructed to emit.
// The prompt builders and the parser are a matched pair: changing a marker
// here requires changing the extraction patterns in parse.go.
const (
	MarkerParagraph = "الفقرة:"
	MarkerChoices   = "الخيارات:"
	MarkerTitle     = "العنوان:"
	MarkerNewTitle  = "العنوان الجديد:"
)

// SystemPrompt is the standing instruction defining the narrator's behavior.
const SystemPrompt = `You are a professional and creative Arabic story writer. Your task is to write original, engaging, and cohesive Arabic stories.

Adhere to the following standards in all the stories you write:

1. Use correct and understandable classical Arabic language, free from grammatical and spelling errors.
2. Build a coherent and logical story that follows good dramatic structure principles (beginning, rising action, climax, resolution).
3. Adhere to Arabic and Islamic values and ethics in the story content.
4. Avoid inappropriate content or anything that violates public taste or religious values.
5. Provide detailed sensory descriptions of characters, places, and events to make the story vivid and engaging.
6. Make dialogue realistic and natural, appropriate to the story's characters and environment.
7. Maintain consistency in character traits and behaviors throughout the story.
8. Include positive values and useful lessons in an indirect way.
9. Use diverse narrative techniques: description, dialogue, narration, internal monologue.
10. Create a clear conflict that drives the story events and maintains reader interest.

Each time you are asked to write a new paragraph of the story, you must:
- Write a coherent and engaging narrative paragraph of 4-6 lines in Arabic.
- Provide 3 distinctive and interesting options to develop the story's path.

Important rules for options:
1. Make options very practical and short (3-5 words only) in Arabic.
2. ALWAYS start each option with the character's name followed by the action verb.
3. Use clear format: "[Character name] + verb", for example: "أحمد يتصل بالشرطة", "سارة تهرب من المكان".
4. Make it absolutely clear WHO is performing the action in each option.
5. Don't explain what will happen after the choice, just mention the direct action.
6. Ensure each option will lead to a completely different path in the story.
7. Make options logical and appropriate to the current situation in the story.

Result of user choice:
1. Do not summarize the user's chosen option at the beginning of the next paragraph.
2. Start directly with the reactions and consequences resulting from the user's choice.
3. Present surprising and unexpected developments resulting from the choice.
4. Maintain story consistency despite the change in path.

When the story is complete, choose an engaging and deep title that reflects the essence and content of the story.`

// EditSystemPrompt is the standing instruction for the edit operation.
const EditSystemPrompt = `أنت مساعد ذكي متخصص في تحرير وتعديل القصص العربية. مهمتك هي تعديل القصة بناءً على تعليمات المستخدم مع الحفاظ على الأسلوب والنبرة الأصلية.
قم بإرجاع القصة المعدلة بالكامل وليس فقط الأجزاء المعدلة. تأكد من تقسيم القصة إلى فقرات واضحة كما في النص الأصلي.
إذا تطلبت التعليمات تغيير العنوان، قم بإضافة سطر "العنوان الجديد: <العنوان المعدل>" في بداية استجابتك.`

const optionFormatRules = `Make the options very short (3-5 words only) and practical and direct.
ALWAYS include the character's name in each option before the action verb.
Format: "[Character name] + verb", like: "أحمد يتصل بالشرطة", "سارة تهرب من المكان".`

const choicesFormatBlock = MarkerChoices + `
1. [Character name + action verb in Arabic, 3-5 words total]
2. [Character name + different action verb in Arabic, 3-5 words total]
3. [Character name + another different action verb in Arabic, 3-5 words total]`

func formatCharacters(characters []Character) string {
	if len(characters) == 0 {
		return "لا توجد شخصيات محددة، يمكنك إنشاء شخصيات مناسبة للقصة."
	}
	var b strings.Builder
	b.WriteString("معلومات الشخصيات:\n")
	for i, ch := range characters {
		fmt.Fprintf(&b, "%d. الشخصية: %s، الجنس: %s، الوصف: %s\n", i+1, ch.Name, ch.Gender, ch.Description)
	}
	return b.String()
}

func describeGenres(primary, secondary Genre) string {
	if secondary == GenreNone || secondary == "" {
		return fmt.Sprintf("قصة من نوع %s", primary)
	}
	return fmt.Sprintf("قصة تجمع بين نوعي %s و%s", primary, secondary)
}

// InitPrompt builds the instruction that opens a new story.
func InitPrompt(cfg Config) string {
	return fmt.Sprintf(`Please write %s of %s.

%s

Required from you:
1. Write the first paragraph of the story (4-6 lines) in Arabic.
2. Start the story with a strong and engaging beginning that captivates the reader from the first line.
3. Present the characters and setting (place and time) clearly and interestingly.
4. Establish a conflict, problem, or situation that drives the story events.
5. Present 3 short, exciting, and logical options for actions the protagonist can take.
6. %s

Present the first paragraph and options in the following format:

%s
[Write the first paragraph of the story here in Arabic]

%s`,
		cfg.Length.description(),
		describeGenres(cfg.PrimaryType, cfg.SecondaryType),
		formatCharacters(cfg.Characters),
		optionFormatRules,
		MarkerParagraph,
		choicesFormatBlock,
	)
}

// ContinuationPrompt builds the instruction that advances the story after
// the user picked a numbered choice. When the paragraph being requested is
// the terminal one, the prompt asks for a closing paragraph and a title
// instead of new choices.
func ContinuationPrompt(storyText string, choiceID int, choiceText string, current, max int) string {
	prompt := fmt.Sprintf(`Story context so far:
%s

The user chose path number %d: %s

Required from you:
1. Continue writing the story with a new paragraph (4-6 lines) in Arabic that directly follows the choice made by the user.
2. Do not summarize the choice that the user made; instead, start directly with the events that result from this choice.
3. Add unexpected and exciting developments to engage the reader.
4. Maintain consistency in the story's characters and world.
`, storyText, choiceID, choiceText)

	if current >= max-1 {
		return prompt + fmt.Sprintf(`5. This is the final paragraph of the story, so end the story in a logical and satisfying way that closes all open paths.
6. Suggest an appropriate and deep title for the complete story.

Present the final paragraph and title in the following format:

%s
[Write the final paragraph of the story here in Arabic]

%s
[Write the suggested title for the story here in Arabic]`, MarkerParagraph, MarkerTitle)
	}

	return prompt + fmt.Sprintf(`5. Present 3 short, logical, and practical options for continuing the story.
6. %s
7. Ensure each option will lead to a completely different path in the story.

Present the next paragraph and options in the following format:

%s
[Write the next paragraph of the story here in Arabic]

%s`, optionFormatRules, MarkerParagraph, choicesFormatBlock)
}

// CustomContinuationPrompt builds the instruction that advances the story
// from free text the user wrote instead of picking one of the offered
// options.
func CustomContinuationPrompt(storyText, customText string, current, max int) string {
	return fmt.Sprintf(`لقد وصلنا إلى هذه النقطة في القصة:

%s

المستخدم اختار أن يكتب رداً مخصصاً بدلاً من اختيار أحد الخيارات المقدمة. الرد المخصص للمستخدم هو:

"%s"

بناءً على هذا المدخل من المستخدم، استمر في القصة واكتب فقرة جديدة تأخذ بعين الاعتبار ما كتبه المستخدم.
ثم قدم 3 خيارات جديدة للمستخدم ليختار منها للاستمرار في القصة.

تذكر أن القصة الآن في:
- الفقرة رقم: %d من %d
- إذا كانت هذه الفقرة الأخيرة أو قبل الأخيرة، قم بختم القصة بشكل مناسب.

يجب أن يكون تنسيق ردك كما يلي:

%s [نص الفقرة الجديدة من القصة]

%s
1. [الخيار الأول]
2. [الخيار الثاني]
3. [الخيار الثالث]

إذا كانت هذه الفقرة الأخيرة، أضف عنواناً للقصة:

%s [عنوان مناسب للقصة كاملة]`,
		storyText, customText, current, max,
		MarkerParagraph, MarkerChoices, MarkerTitle)
}

// TitlePrompt asks the model for a title over the finished story text.
func TitlePrompt(storyText string) string {
	return fmt.Sprintf(`Here is a complete story:

%s

Suggest an appropriate and engaging title for this story that reflects its essence and content.
Provide only the title without any additional explanation and without any story Characters names in Arabic.`, storyText)
}

// EditPrompt asks the model to rewrite the full story per the user's
// instructions, keeping the paragraph structure.
func EditPrompt(storyText, instructions string) string {
	return fmt.Sprintf(`فيما يلي قصة كاملة:

%s

تعليمات التعديل:
%s

قم بتعديل القصة وفقًا للتعليمات المذكورة أعلاه وأرجع القصة المعدلة بالكامل مقسمة إلى فقرات.`, storyText, instructions)
}
