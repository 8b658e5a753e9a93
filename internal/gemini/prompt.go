package gemini

import "fmt"

const visionPromptFormat = `You are a highly specialized AI assistant for document analysis. Your primary task is to perform OCR on the provided image and reconstruct the text into a clean, readable format. Please analyze the layout carefully. %s

Here are the key guidelines for your output:
1.  **Reconstruct Semantic Paragraphs:** Your main priority is to create paragraphs that are grammatically and semantically coherent. Combine lines that belong together into a single paragraph. Start a new paragraph only when there's a clear semantic break, such as an indentation or significant vertical space.
2.  **Analyze Layout:** For multi-column layouts, it is crucial to process the text of the first column completely from top to bottom before moving to the next column.
3.  **Join Hyphenated Words:** Please correctly join words that are hyphenated across lines (e.g., 'experi-' and 'ment' should become 'experiment').
4.  **Exclude Extraneous Elements:** Please ignore page headers, footers, and page numbers.
5.  **Final Output Format:** The final output should consist of ONLY the reconstructed text, formatted into clean paragraphs. Do not add any of your own comments, summaries, or explanations.`

// VisionParts builds the single-turn OCR request for an image. A language
// hint sentence is appended only when the source language is known.
func VisionParts(imageB64, mimeType, sourceLang string) []Part {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	hint := ""
	if sourceLang != "" && sourceLang != "auto" {
		hint = fmt.Sprintf("The text in the image is primarily in %s.", sourceLang)
	}
	return []Part{
		{Text: fmt.Sprintf(visionPromptFormat, hint)},
		{InlineData: &InlineData{MimeType: mimeType, Data: imageB64}},
	}
}

// SpeechParts builds the single-turn transcription request for an audio clip.
func SpeechParts(audioB64, mimeType, spokenLang string) []Part {
	hint := "Detect the spoken language automatically."
	if spokenLang != "" && spokenLang != "auto" {
		hint = fmt.Sprintf("The user's primary spoken language is %s.", spokenLang)
	}
	prompt := fmt.Sprintf("You are a highly accurate transcription service. Transcribe the following audio. %s Provide a clean and accurate transcript. If you are unsure about a specific word or phrase, transcribe it as best you can and put it inside parentheses. Do not add any other comments.", hint)
	return []Part{
		{Text: prompt},
		{InlineData: &InlineData{MimeType: mimeType, Data: audioB64}},
	}
}

// TranslationPrompt builds the detect-and-translate instruction for one
// paragraph or transcript.
func TranslationPrompt(text, targetLang string) string {
	return fmt.Sprintf("You are an expert translator. Detect the source language of the following text and translate it into fluent, natural %s. Output only the translated text itself, without any additional comments or explanations.\n\nSource text:\n%q", targetLang, text)
}
