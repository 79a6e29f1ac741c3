package prompt

import "github.com/chihoong/discord-summarizer-bot/internal/models"

// Templates are mustache documents. Variables use triple braces so chat text
// and channel names reach the backend unescaped.

const comprehensiveTemplate = `Please provide a comprehensive summary of these Discord messages from #{{{channel}}}.

Include:
- Main topics discussed
- Key decisions or conclusions
- Important announcements or updates
- Notable questions and answers
- Overall tone and sentiment of the conversation

Messages ({{count}}):
{{{messages}}}

Please format your response clearly with appropriate sections. The summary must be self-contained: do not refer to these instructions or ask follow-up questions.`

const briefTemplate = `Write a brief summary of these Discord messages from #{{{channel}}} in no more than 200 words.

Focus only on the most important topics and outcomes. Use a short title line followed by one or two compact paragraphs.

Messages ({{count}}):
{{{messages}}}

The summary must be self-contained and must not exceed 200 words.`

const bulletTemplate = `Summarize these Discord messages from #{{{channel}}} as a bullet-point list.

Structure:
**Topics** - one bullet per topic discussed
**Decisions** - one bullet per decision or conclusion (write "None" if there were none)
**Action items** - one bullet per follow-up, with the person responsible when known

Messages ({{count}}):
{{{messages}}}

Keep each bullet to a single line. The answer must be self-contained.`

const participantsTemplate = `Summarize these Discord messages from #{{{channel}}} by participant.

For each active participant, give a heading with their name and a few bullets covering:
- What they contributed or asked
- Positions they took or decisions they drove
- Anything they committed to doing

Finish with a one-paragraph overview of how the conversation went overall.

Messages ({{count}}):
{{{messages}}}

The answer must be self-contained and structured with clear headings.`

const customTemplate = `{{{instruction}}}

The following are Discord messages from #{{{channel}}}. Apply the instruction above to them.

Messages ({{count}}):
{{{messages}}}

Format your response clearly with appropriate sections. The answer must be self-contained.`

var styleTemplates = map[models.Style]string{
	models.StyleComprehensive: comprehensiveTemplate,
	models.StyleBrief:         briefTemplate,
	models.StyleBullet:        bulletTemplate,
	models.StyleParticipants:  participantsTemplate,
}
