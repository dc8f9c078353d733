package prompt

import (
	"fmt"
	"strings"
)

// Image is the image-generation prompt derived from a topic.
func Image(topic string) string {
	return fmt.Sprintf("An image related to %s", topic)
}

// StoryFromURL asks for a story about an image the model can reach by URL.
func StoryFromURL(url, topic string) string {
	return fmt.Sprintf("Look at this image: %s. Write a short story about it related to the topic: %s.", url, topic)
}

// StoryFromImage asks for a story about an image attached to the request.
func StoryFromImage(topic string) string {
	return fmt.Sprintf("Look at this image. Write a short story about it related to the topic: %s.", topic)
}

// Topic normalizes user input; an empty result means no input was given.
func Topic(s string) string {
	return strings.TrimSpace(s)
}
