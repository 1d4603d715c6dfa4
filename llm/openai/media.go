package openai

import (
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jmontane/switchyard/llm"
)

// imagePart converts an image attachment to an image_url content part.
// Raw bytes become a data URL carrying the attachment's media type.
func imagePart(img llm.Image) openai.ChatMessagePart {
	url := img.URL
	if url == "" && len(img.Data) > 0 {
		url = fmt.Sprintf("data:%s;base64,%s", img.MediaType, base64.StdEncoding.EncodeToString(img.Data))
	}

	imageURL := &openai.ChatMessageImageURL{URL: url}
	if img.Detail != "" {
		imageURL.Detail = openai.ImageURLDetail(img.Detail)
	}

	return openai.ChatMessagePart{
		Type:     openai.ChatMessagePartTypeImageURL,
		ImageURL: imageURL,
	}
}

// documentPart converts a document attachment to a content part. The
// chat-completions API has no first-class document part, so the document is
// inlined as a filename-labelled text part.
func documentPart(doc llm.Document) openai.ChatMessagePart {
	return openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: fmt.Sprintf("<document filename=%q media_type=%q>\n%s\n</document>", doc.Filename, doc.MediaType, string(doc.Data)),
	}
}
